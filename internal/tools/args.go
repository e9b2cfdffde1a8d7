package tools

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/iliyamo/food-ordering-assistant/internal/cache"
	"github.com/iliyamo/food-ordering-assistant/internal/model"
)

type searchRestaurantsArgs struct {
	Name       string  `mapstructure:"name"`
	Cuisine    string  `mapstructure:"cuisine"`
	PriceRange int     `mapstructure:"priceRange"`
	Rating     float64 `mapstructure:"rating"`
}

type menuArgs struct {
	RestaurantName string   `mapstructure:"restaurantName"`
	Category       string   `mapstructure:"category"`
	Type           string   `mapstructure:"type"`
	MaxPrice       float64  `mapstructure:"maxPrice"`
	Tags           []string `mapstructure:"tags"`
}

type searchItemsArgs struct {
	Name         string   `mapstructure:"name"`
	Category     string   `mapstructure:"category"`
	Type         string   `mapstructure:"type"`
	MaxBasePrice float64  `mapstructure:"maxBasePrice"`
	Tags         []string `mapstructure:"tags"`
	Allergens    []string `mapstructure:"allergens"`
}

type itemRestaurantsArgs struct {
	ItemName string  `mapstructure:"itemName"`
	Type     string  `mapstructure:"type"`
	MaxPrice float64 `mapstructure:"maxPrice"`
	Category string  `mapstructure:"category"`
}

type customizationArg struct {
	Name  string  `mapstructure:"name"`
	Price float64 `mapstructure:"price"` // ignored, prices come from the catalog
}

type orderItemArg struct {
	ItemName       string             `mapstructure:"itemName"`
	Quantity       int                `mapstructure:"quantity"`
	Customizations []customizationArg `mapstructure:"customizations"`
}

type orderArgs struct {
	UserID              string         `mapstructure:"userId"`
	RestaurantName      string         `mapstructure:"restaurantName"`
	Items               []orderItemArg `mapstructure:"items"`
	PickupTime          string         `mapstructure:"pickupTime"`
	SpecialInstructions string         `mapstructure:"specialInstructions"`
}

type orderStatusArgs struct {
	OrderID string `mapstructure:"orderId"`
	UserID  string `mapstructure:"userId"`
}

// parseArgs decodes the JSON argument object proposed by the model.  An
// empty string is an empty object.
func parseArgs(raw string) (map[string]any, error) {
	args := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, &ValidationError{Msg: "arguments are not a JSON object: " + err.Error()}
	}
	return args, nil
}

// sanitize drops null, empty and "any" arguments.
func sanitize(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if cache.Blank(v) {
			continue
		}
		out[k] = v
	}
	return out
}

// decode copies args into dst.  Numbers sent as strings and single values
// sent where a list is expected are accepted.
func decode(args map[string]any, dst any) error {
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
			trimStrings,
		),
	})
	if err != nil {
		return err
	}
	if err := d.Decode(sanitize(args)); err != nil {
		return &ValidationError{Msg: err.Error()}
	}
	return nil
}

func trimStrings(from, _ reflect.Type, data any) (any, error) {
	if s, ok := data.(string); ok && from.Kind() == reflect.String {
		return strings.TrimSpace(s), nil
	}
	return data, nil
}

func dietaryType(field, s string) (model.DietaryType, error) {
	if s == "" {
		return "", nil
	}
	t := model.DietaryType(strings.ToUpper(s))
	if !t.Valid() {
		return "", invalid(field, "must be one of VEG, NON_VEG, EGG, VEGAN")
	}
	return t, nil
}

func (a *orderArgs) validate() error {
	if a.RestaurantName == "" {
		return invalid("restaurantName", "is required")
	}
	if len(a.Items) == 0 {
		return invalid("items", "at least one item is required")
	}
	for i, it := range a.Items {
		if it.ItemName == "" {
			return invalid("items", "item %d has no itemName", i+1)
		}
		if it.Quantity < 1 {
			return invalid("items", "quantity of %s must be at least 1", it.ItemName)
		}
		for _, c := range it.Customizations {
			if strings.TrimSpace(c.Name) == "" {
				return invalid("items", "customization of %s has no name", it.ItemName)
			}
		}
	}
	return nil
}
