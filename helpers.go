package jsonffi

// GetString safely extracts a string field from an object request.
// Returns the value and true if found and is a string, otherwise returns empty string and false.
func GetString(req ParsedRequest, key string) (string, bool) {
	v, ok := req.Field(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetNumber safely extracts a numeric field from an object request.
// JSON numbers are decoded as float64.
func GetNumber(req ParsedRequest, key string) (float64, bool) {
	v, ok := req.Field(key)
	if !ok {
		return 0, false
	}
	n, ok := v.(float64)
	return n, ok
}

// GetInt extracts a numeric field that holds a whole number.
func GetInt(req ParsedRequest, key string) (int, bool) {
	n, ok := GetNumber(req, key)
	if !ok || n != float64(int(n)) {
		return 0, false
	}
	return int(n), true
}

// GetBool safely extracts a boolean field from an object request.
func GetBool(req ParsedRequest, key string) (bool, bool) {
	v, ok := req.Field(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// GetStringDefault returns the string field or defaultValue if it is
// missing or not a string.
func GetStringDefault(req ParsedRequest, key, defaultValue string) string {
	if s, ok := GetString(req, key); ok {
		return s
	}
	return defaultValue
}

// GetIntDefault returns the whole-number field or defaultValue.
func GetIntDefault(req ParsedRequest, key string, defaultValue int) int {
	if n, ok := GetInt(req, key); ok {
		return n
	}
	return defaultValue
}

// IsObject reports whether the request is a JSON object.
func IsObject(req ParsedRequest) bool {
	_, ok := req.Value.(map[string]any)
	return ok
}
