package domain

// Endpoint is a single WCF path to probe together with a human-readable label.
type Endpoint struct {
	Path        string `json:"path" yaml:"path"`
	Description string `json:"description" yaml:"description"`
}

// DefaultEndpoints returns the fixed probe list, in the order it is requested.
func DefaultEndpoints() []Endpoint {
	return []Endpoint{
		{Path: "/islogin", Description: "检查登录状态"},
		{Path: "/selfwxid", Description: "获取登录账号 wxid"},
		{Path: "/selfinfo", Description: "获取登录账号信息"},
		{Path: "/api/is_login", Description: "检查登录状态 (api)"},
		{Path: "/api/get_self_info", Description: "获取登录账号信息 (api)"},
	}
}

// URL joins base and path by plain concatenation.
func (e Endpoint) URL(baseURL string) string {
	return baseURL + e.Path
}
