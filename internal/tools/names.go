// Package tools declares the closed set of operations the model may call,
// executes them against the catalog and order stores, and tags every
// result with its semantic type.
package tools

// Name identifies one of the callable tools.
type Name int

const (
	SearchRestaurants Name = iota + 1
	GetRestaurantMenu
	SearchMenuItems
	FindRestaurantsByItem
	PreviewOrder
	CreateOrder
	GetOrderStatus
)

// Names lists every tool in catalog order.
var Names = []Name{
	SearchRestaurants,
	GetRestaurantMenu,
	SearchMenuItems,
	FindRestaurantsByItem,
	PreviewOrder,
	CreateOrder,
	GetOrderStatus,
}

// ResultType tags a tool result for the client.
type ResultType string

const (
	TypeRestaurants          ResultType = "restaurants"
	TypeMenu                 ResultType = "menu"
	TypeMenuItems            ResultType = "menuItems"
	TypeRestaurantsWithItems ResultType = "restaurantsWithItems"
	TypeOrderPreview         ResultType = "orderPreview"
	TypeOrder                ResultType = "order"
	TypeOrderStatus          ResultType = "orderStatus"
)

var specs = map[Name]struct {
	wire   string
	result ResultType
}{
	SearchRestaurants:     {"searchRestaurants", TypeRestaurants},
	GetRestaurantMenu:     {"getRestaurantMenu", TypeMenu},
	SearchMenuItems:       {"searchMenuItems", TypeMenuItems},
	FindRestaurantsByItem: {"findRestaurantsByItem", TypeRestaurantsWithItems},
	PreviewOrder:          {"previewOrder", TypeOrderPreview},
	CreateOrder:           {"createOrder", TypeOrder},
	GetOrderStatus:        {"getOrderStatus", TypeOrderStatus},
}

// String returns the name the model uses for the tool.
func (n Name) String() string {
	if s, ok := specs[n]; ok {
		return s.wire
	}
	return "unknown"
}

// ResultType returns the type tag of the tool's results.
func (n Name) ResultType() ResultType {
	return specs[n].result
}

// ParseName resolves a model-supplied tool name.  Unknown names yield an
// *UnsupportedToolError.
func ParseName(s string) (Name, error) {
	for n, spec := range specs {
		if spec.wire == s {
			return n, nil
		}
	}
	return 0, &UnsupportedToolError{Name: s}
}
