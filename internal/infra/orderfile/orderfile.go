// Package orderfile reads order lists used to seed a trading period.
package orderfile

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"auction_go/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of an order list.
type File struct {
	Period string  `yaml:"period" validate:"required"`
	Orders []Entry `yaml:"orders" validate:"dive"`
}

// Entry is one order row. Volume follows the snapshot convention: sells may be
// given negative, positive values are treated as magnitudes.
type Entry struct {
	Side   string          `yaml:"side" validate:"required,side"`
	Price  decimal.Decimal `yaml:"price" validate:"gt=0"`
	Volume decimal.Decimal `yaml:"volume"`
	Filled *bool           `yaml:"filled"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Decimals are checked through their float value so the numeric tags apply.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterValidation("side", isSide)
	return v
}

// isSide accepts whatever domain.ParseSide accepts.
func isSide(fl validator.FieldLevel) bool {
	_, err := domain.ParseSide(fl.Field().String())
	return err == nil
}

// Load reads and validates an order file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates order file content.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode order file: %w", err)
	}
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidOrder, describe(err))
	}
	return &f, nil
}

// Split converts the entries into filled and unfilled domain orders.
// Entries without a filled flag count as filled.
func (f *File) Split() (filled, unfilled []domain.Order, err error) {
	for i, e := range f.Orders {
		side, err := domain.ParseSide(e.Side)
		if err != nil {
			return nil, nil, &domain.OrderError{Index: i, Err: err}
		}
		o := domain.NewOrderFromSigned(side, e.Price, e.Volume)
		if e.Filled == nil || *e.Filled {
			filled = append(filled, o)
		} else {
			unfilled = append(unfilled, o)
		}
	}
	return filled, unfilled, nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
