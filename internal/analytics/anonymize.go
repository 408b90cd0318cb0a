package analytics

import "net/netip"

// AnonymizeIP обнуляет последний октет IPv4 или младшие 80 бит IPv6.
// Для некорректного адреса возвращается пустая строка.
func AnonymizeIP(addr string) string {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return ""
	}
	ip = ip.WithZone("").Unmap()

	bits := 48
	if ip.Is4() {
		bits = 24
	}
	prefix, err := ip.Prefix(bits)
	if err != nil {
		return ""
	}
	return prefix.Addr().String()
}
