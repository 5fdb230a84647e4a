package export

import (
	"context"
	"net/url"

	"github.com/samber/lo"
)

// Lister lists every object of a NetBox endpoint. *netbox.Client satisfies it.
type Lister interface {
	List(ctx context.Context, path string, query url.Values) ([]map[string]any, error)
}

// Rows fetches and shapes the rows of one table.
func Rows(ctx context.Context, lister Lister, t Table) ([]map[string]any, error) {
	objects, err := lister.List(ctx, t.Path, nil)
	if err != nil {
		return nil, err
	}

	switch t.Kind {
	case KindCustomFields:
		return customFieldRows(objects), nil
	case KindDevicesFull:
		types, err := lister.List(ctx, "/api/dcim/device-types/", nil)
		if err != nil {
			return nil, err
		}
		return devicesFullRows(objects, types), nil
	default:
		return lo.Map(objects, func(obj map[string]any, _ int) map[string]any {
			row := serialize(obj)
			delete(row, "custom_fields")
			return row
		}), nil
	}
}

// serialize flattens nested references the way the NetBox client library
// serializes records: objects become their id, choices their value.
func serialize(obj map[string]any) map[string]any {
	row := make(map[string]any, len(obj))
	for k, v := range obj {
		if k == "custom_fields" {
			row[k] = v
			continue
		}
		row[k] = flatten(v)
	}
	return row
}

func flatten(v any) any {
	switch val := v.(type) {
	case map[string]any:
		if id, ok := val["id"]; ok {
			return id
		}
		if choice, ok := val["value"]; ok {
			return choice
		}
		return val
	case []any:
		return lo.Map(val, func(item any, _ int) any { return flatten(item) })
	default:
		return v
	}
}

// processCustomFields spreads choice dicts into columns: {"tier": {"value":
// "gold", "label": "Gold"}} becomes tier=gold, tier_value=gold, tier_label=Gold.
func processCustomFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		dict, ok := value.(map[string]any)
		if !ok {
			out[key] = value
			continue
		}
		for sub, subValue := range dict {
			out[key+"_"+sub] = subValue
		}
		if choice, ok := dict["value"]; ok {
			out[key] = choice
		}
	}
	return out
}

func customFieldRows(objects []map[string]any) []map[string]any {
	var rows []map[string]any
	for _, obj := range objects {
		fields, _ := obj["custom_fields"].(map[string]any)
		if len(fields) == 0 {
			continue
		}
		row := processCustomFields(fields)
		row["parent_id"] = obj["id"]
		rows = append(rows, row)
	}
	return rows
}

func devicesFullRows(devices, deviceTypes []map[string]any) []map[string]any {
	heights := lo.SliceToMap(deviceTypes, func(dt map[string]any) (any, any) {
		return dt["id"], dt["u_height"]
	})

	rows := make([]map[string]any, 0, len(devices))
	for _, device := range devices {
		row := serialize(device)

		if fields, ok := device["custom_fields"].(map[string]any); ok && len(fields) > 0 {
			row["custom_fields"] = processCustomFields(fields)
		}
		delete(row, "position")
		delete(row, "rack")
		delete(row, "face")
		delete(row, "platform")

		if rack := nested(device, "rack"); rack != nil {
			// A rack always belongs to the device's site
			row["rack_site"] = nested(device, "site")["slug"]
			row["rack_name"] = rack["name"]
			if face := nested(device, "face"); face != nil {
				row["rack_face"] = face["label"]
			}
			row["rack_position"] = device["position"]
		}
		row["site"] = nested(device, "site")["slug"]
		if tenant := nested(device, "tenant"); tenant != nil {
			row["tenant"] = tenant["slug"]
		}
		if dt := nested(device, "device_type"); dt != nil {
			row["device_type"] = dt["slug"]
			row["device_manufacturer"] = nested(dt, "manufacturer")["slug"]
			row["device_height"] = heights[dt["id"]]
		}
		if status := nested(device, "status"); status != nil {
			row["status"] = status["label"]
		}
		if platform := nested(device, "platform"); platform != nil {
			row["platform"] = platform["slug"]
		}
		// Renamed to role in NetBox 3.6
		role := nested(device, "device_role")
		if role == nil {
			role = nested(device, "role")
		}
		if role != nil {
			row["device_role"] = role["slug"]
		}

		rows = append(rows, row)
	}
	return rows
}

func nested(obj map[string]any, key string) map[string]any {
	m, _ := obj[key].(map[string]any)
	return m
}
