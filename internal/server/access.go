package server

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/palemoky/cartas-online/internal/config"
	"github.com/palemoky/cartas-online/internal/logger"
)

// ipSet 地址或 CIDR 网段的集合
type ipSet []netip.Prefix

func parseIPSet(entries []string) ipSet {
	var set ipSet
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			set = append(set, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			logger.L().Warnf("忽略无效的 IP 名单项: %q", entry)
			continue
		}
		addr = addr.Unmap()
		set = append(set, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return set
}

func (s ipSet) contains(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range s {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// AccessPolicy 来源和 IP 名单，由启动配置生成，之后只读
type AccessPolicy struct {
	origins map[string]struct{} // 为空时不限制来源
	allow   ipSet               // 非空时只放行名单内的地址
	block   ipSet
}

// NewAccessPolicy 按服务器配置创建访问策略；来源列表含 "*" 等同于不限制
func NewAccessPolicy(cfg config.ServerConfig) *AccessPolicy {
	p := &AccessPolicy{
		origins: make(map[string]struct{}, len(cfg.AllowedOrigins)),
		allow:   parseIPSet(cfg.IPAllowlist),
		block:   parseIPSet(cfg.IPBlocklist),
	}
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			clear(p.origins)
			break
		}
		p.origins[strings.ToLower(strings.TrimSpace(origin))] = struct{}{}
	}
	return p
}

// OriginAllowed 没有 Origin 头的请求（同源或非浏览器客户端）总是放行
func (p *AccessPolicy) OriginAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(p.origins) == 0 {
		return true
	}
	_, ok := p.origins[strings.ToLower(origin)]
	return ok
}

// IPAllowed 黑名单优先于白名单
func (p *AccessPolicy) IPAllowed(ip string) bool {
	if p.block.contains(ip) {
		return false
	}
	return len(p.allow) == 0 || p.allow.contains(ip)
}

// clientIP 优先使用反向代理写入的地址
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
