package tools

import "github.com/tmc/langchaingo/llms"

var dietaryEnum = []string{"VEG", "NON_VEG", "EGG", "VEGAN"}

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func num(desc string) map[string]any {
	return map[string]any{"type": "number", "description": desc}
}

func strList(desc string) map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": desc}
}

func dietary(desc string) map[string]any {
	m := map[string]any{"type": "string", "enum": dietaryEnum}
	if desc != "" {
		m["description"] = desc
	}
	return m
}

func object(props map[string]any, required ...string) map[string]any {
	m := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		m["required"] = required
	}
	return m
}

func orderItems(desc string) map[string]any {
	customization := object(map[string]any{
		"name":  str("Name of the customization (e.g., 'Extra Cheese')"),
		"price": num("Price of the customization"),
	})
	item := object(map[string]any{
		"itemName": str("Name of the menu item"),
		"quantity": num("Quantity of the item"),
		"customizations": map[string]any{
			"type":  "array",
			"items": customization,
		},
	}, "itemName", "quantity")
	return map[string]any{"type": "array", "items": item, "description": desc}
}

var declarations = map[Name]struct {
	desc   string
	params map[string]any
}{
	SearchRestaurants: {
		"Search for restaurants based on various criteria",
		object(map[string]any{
			"name":       str("Search by restaurant name"),
			"cuisine":    str("Type of cuisine to search for Indian, South indian etc"),
			"priceRange": num("Max Price"),
			"rating":     num("Minimum rating threshold"),
			"type":       str("VEG, NON_VEG, EGG, VEGAN"),
		}),
	},
	GetRestaurantMenu: {
		"Get all menu items for a specific restaurant with filters",
		object(map[string]any{
			"restaurantName": str("name of the restaurant should be written like this 'This Is My Restaurant'"),
			"category":       str("Filter by food category"),
			"type":           dietary("Filter by food type"),
			"maxPrice":       num("Maximum base price filter"),
			"tags":           strList("Filter by item tags"),
		}, "restaurantName"),
	},
	SearchMenuItems: {
		"Search for menu items across all restaurants",
		object(map[string]any{
			"name":         str("Search by item name"),
			"category":     str("Filter by cuisine of food"),
			"type":         dietary(""),
			"maxBasePrice": num("Maximum base price"),
			"tags":         strList("Filter by item tags"),
			"allergens":    strList("Filter out items with specific allergens"),
		}),
	},
	FindRestaurantsByItem: {
		"Find restaurants that serve specific items",
		object(map[string]any{
			"itemName": str("Name of the item to search for"),
			"type":     dietary(""),
			"maxPrice": num("Maximum price for the item"),
			"category": str("Category of the item"),
		}, "itemName"),
	},
	PreviewOrder: {
		"Preview order details and get available customizations before placing the order",
		object(map[string]any{
			"restaurantName": str("Name of restaurant"),
			"items":          orderItems("Array of items to preview with their customizations"),
		}, "restaurantName", "items"),
	},
	CreateOrder: {
		"Create a new order",
		object(map[string]any{
			"userId":              str("ID of the user placing the order"),
			"restaurantName":      str("Name of restaurant"),
			"items":               orderItems("Items to order with their customizations"),
			"pickupTime":          str("Requested pickup time (ISO string)"),
			"specialInstructions": str("Special instructions for the order"),
		}, "restaurantName", "items"),
	},
	GetOrderStatus: {
		"Get the current status of an order",
		object(map[string]any{
			"orderId": str("ID of the order"),
			"userId":  str("ID of the user who placed the order"),
		}, "orderId", "userId"),
	},
}

// Catalog returns the tool declarations offered to the model, in catalog
// order.
func Catalog() []llms.Tool {
	out := make([]llms.Tool, 0, len(Names))
	for _, n := range Names {
		d := declarations[n]
		out = append(out, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        n.String(),
				Description: d.desc,
				Parameters:  d.params,
			},
		})
	}
	return out
}
