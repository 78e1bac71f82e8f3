package broadcaster

import "encoding/json"

// UserInfo is the opaque per-connection blob supplied on join. Values are
// limited to strings, numbers and booleans.
type UserInfo map[string]any

// ParseUserInfo keeps the scalar fields of a JSON object and ignores the
// rest. Anything that is not an object yields an empty UserInfo.
func ParseUserInfo(raw json.RawMessage) UserInfo {
	info := UserInfo{}
	if len(raw) == 0 {
		return info
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return info
	}

	for key, value := range fields {
		switch value.(type) {
		case string, float64, bool:
			info[key] = value
		}
	}

	return info
}

func (u UserInfo) Clone() UserInfo {
	clone := make(UserInfo, len(u))
	for key, value := range u {
		clone[key] = value
	}

	return clone
}
