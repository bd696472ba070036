package event

import (
	"fmt"
	"strconv"
	"strings"
)

// AllChannel receives every clearing regardless of period.
const AllChannel = "clearing.*"

// PeriodChannel returns the channel name for one trading period.
func PeriodChannel(periodID uint) string {
	return "clearing." + strconv.FormatUint(uint64(periodID), 10)
}

// ParseChannel validates a channel name sent by a subscriber.
func ParseChannel(name string) (string, error) {
	if name == AllChannel {
		return name, nil
	}
	id, ok := strings.CutPrefix(name, "clearing.")
	if !ok {
		return "", fmt.Errorf("unknown channel %q", name)
	}
	if _, err := strconv.ParseUint(id, 10, 32); err != nil {
		return "", fmt.Errorf("invalid period in channel %q", name)
	}
	return name, nil
}
