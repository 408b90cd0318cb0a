// Package clientip определяет реальный адрес клиента за цепочкой доверенных прокси.
package clientip

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// HeaderForwardedFor заголовок, в который прокси дописывают адрес предыдущего узла
const HeaderForwardedFor = "X-Forwarded-For"

// Resolver хранит доверенные подсети. Только чтение после создания.
type Resolver struct {
	trusted []netip.Prefix
}

// NewResolver разбирает список CIDR. Одиночный адрес без маски трактуется как /32 или /128.
func NewResolver(cidrs []string) (*Resolver, error) {
	r := &Resolver{}
	for _, raw := range cidrs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		prefix, err := parsePrefix(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy range %q: %w", raw, err)
		}
		r.trusted = append(r.trusted, prefix)
	}
	return r, nil
}

func parsePrefix(raw string) (netip.Prefix, error) {
	if !strings.Contains(raw, "/") {
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return netip.Prefix{}, err
		}
		addr = addr.Unmap()
		return netip.PrefixFrom(addr, addr.BitLen()), nil
	}
	prefix, err := netip.ParsePrefix(raw)
	if err != nil {
		return netip.Prefix{}, err
	}
	if prefix.Addr().Is4In6() && prefix.Bits() >= 96 {
		prefix = netip.PrefixFrom(prefix.Addr().Unmap(), prefix.Bits()-96)
	}
	return prefix.Masked(), nil
}

// Trusted сообщает, входит ли адрес в одну из доверенных подсетей
func (r *Resolver) Trusted(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range r.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// Resolve возвращает адрес клиента. Цепочка обходится от ближайшего узла к дальнему,
// первый адрес вне доверенных подсетей считается клиентским. Если непосредственный
// собеседник не доверенный или цепочки нет, возвращается remoteAddr.
// Некорректные элементы цепочки пропускаются.
func (r *Resolver) Resolve(remoteAddr string, chain []string) string {
	remote := HostOnly(remoteAddr)
	if len(chain) == 0 {
		return remote
	}
	peer, err := netip.ParseAddr(remote)
	if err != nil || !r.Trusted(peer) {
		return remote
	}

	var farthest string
	for i := len(chain) - 1; i >= 0; i-- {
		addr, ok := parseHop(chain[i])
		if !ok {
			continue
		}
		if !r.Trusted(addr) {
			return addr.String()
		}
		farthest = addr.String()
	}
	if farthest != "" {
		return farthest
	}
	return remote
}

// FromRequest применяет Resolve к входящему HTTP-запросу
func (r *Resolver) FromRequest(req *http.Request) string {
	return r.Resolve(req.RemoteAddr, ForwardedChain(req.Header))
}

// ForwardedChain собирает все значения X-Forwarded-For в порядке добавления
func ForwardedChain(h http.Header) []string {
	var chain []string
	for _, line := range h.Values(HeaderForwardedFor) {
		for _, part := range strings.Split(line, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				chain = append(chain, part)
			}
		}
	}
	return chain
}

func parseHop(raw string) (netip.Addr, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return netip.Addr{}, false
	}
	if ap, err := netip.ParseAddrPort(raw); err == nil {
		return ap.Addr().Unmap(), true
	}
	addr, err := netip.ParseAddr(strings.Trim(raw, "[]"))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// HostOnly отрезает порт от адреса вида host:port
func HostOnly(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
