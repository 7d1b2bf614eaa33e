package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/cartas-online/internal/config"
)

func TestAccessPolicy_IPAllowed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		allow []string
		block []string
		ip    string
		want  bool
	}{
		{name: "无名单时放行", ip: "192.0.2.1", want: true},
		{name: "黑名单地址", block: []string{"192.0.2.2"}, ip: "192.0.2.2", want: false},
		{name: "黑名单网段", block: []string{"198.51.100.0/24"}, ip: "198.51.100.77", want: false},
		{name: "网段之外", block: []string{"198.51.100.0/24"}, ip: "198.51.101.1", want: true},
		{name: "IPv4 映射地址", block: []string{"192.0.2.9"}, ip: "::ffff:192.0.2.9", want: false},
		{name: "不在白名单", allow: []string{"10.1.0.0/16"}, ip: "10.2.0.1", want: false},
		{name: "在白名单", allow: []string{"10.1.0.0/16"}, ip: "10.1.3.4", want: true},
		{name: "黑名单优先", allow: []string{"10.1.0.0/16"}, block: []string{"10.1.3.4"}, ip: "10.1.3.4", want: false},
		{name: "无法解析的地址不在白名单内", allow: []string{"10.1.0.0/16"}, ip: "unknown", want: false},
		{name: "无效名单项被忽略", block: []string{"not-an-ip", ""}, ip: "192.0.2.3", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := NewAccessPolicy(config.ServerConfig{IPAllowlist: tt.allow, IPBlocklist: tt.block})
			assert.Equal(t, tt.want, p.IPAllowed(tt.ip))
		})
	}
}

func TestAccessPolicy_OriginAllowed(t *testing.T) {
	t.Parallel()

	withOrigin := func(origin string) *http.Request {
		req, err := http.NewRequest(http.MethodGet, "/api/rooms", http.NoBody)
		require.NoError(t, err)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		return req
	}
	policy := func(origins ...string) *AccessPolicy {
		return NewAccessPolicy(config.ServerConfig{AllowedOrigins: origins})
	}

	assert.True(t, policy().OriginAllowed(withOrigin("https://other.example")), "空列表不限制")
	assert.True(t, policy("https://cartas.example", "*").OriginAllowed(withOrigin("https://other.example")))

	p := policy("https://cartas.example", "https://M.cartas.example")
	assert.True(t, p.OriginAllowed(withOrigin("https://cartas.example")))
	assert.True(t, p.OriginAllowed(withOrigin("https://m.cartas.example")))
	assert.False(t, p.OriginAllowed(withOrigin("https://other.example")))
	assert.False(t, p.OriginAllowed(withOrigin("http://cartas.example")))
	assert.True(t, p.OriginAllowed(withOrigin("")), "没有 Origin 头视为同源")
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{name: "直连", remoteAddr: "192.0.2.10:51234", want: "192.0.2.10"},
		{name: "IPv6 直连", remoteAddr: "[2001:db8::1]:443", want: "2001:db8::1"},
		{
			name:       "代理链取第一个",
			remoteAddr: "10.0.0.1:443",
			headers:    map[string]string{"X-Forwarded-For": " 203.0.113.1 , 10.0.0.2"},
			want:       "203.0.113.1",
		},
		{
			name:       "X-Real-IP",
			remoteAddr: "10.0.0.1:443",
			headers:    map[string]string{"X-Real-IP": "203.0.113.2"},
			want:       "203.0.113.2",
		},
		{
			name:       "X-Forwarded-For 优先",
			remoteAddr: "10.0.0.1:443",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.3", "X-Real-IP": "203.0.113.4"},
			want:       "203.0.113.3",
		},
		{name: "没有端口", remoteAddr: "pipe", want: "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req, err := http.NewRequest(http.MethodGet, "/api/rooms", http.NoBody)
			require.NoError(t, err)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
