//go:build windows

package netlisten

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/sys/windows"
)

var errAcceptWouldBlock = errors.New("netlisten: accept would block")

func listenSocket(domain Domain, typ SockType, proto Proto, address string) (int, error) {
	family := windows.AF_INET
	if domain == DomainInet6 {
		family = windows.AF_INET6
	}
	if typ != TypeStream {
		return -1, errors.New("netlisten: unsupported socket type")
	}
	sockProto := 0
	if proto == ProtoTCP {
		sockProto = windows.IPPROTO_TCP
	}

	h, err := windows.Socket(family, windows.SOCK_STREAM, sockProto)
	if err != nil {
		return -1, err
	}
	var nonblocking uint32 = 1
	if err := windows.IoctlSocket(h, windows.FIONBIO, &nonblocking); err != nil {
		windows.Closesocket(h)
		return -1, err
	}
	_ = windows.SetsockoptInt(h, windows.SOL_SOCKET, windows.SO_REUSEADDR, 1)

	sa, err := toSockaddr(domain, address)
	if err != nil {
		windows.Closesocket(h)
		return -1, err
	}
	if err := windows.Bind(h, sa); err != nil {
		windows.Closesocket(h)
		return -1, err
	}
	if err := windows.Listen(h, 128); err != nil {
		windows.Closesocket(h)
		return -1, err
	}
	return int(h), nil
}

func toSockaddr(domain Domain, address string) (windows.Sockaddr, error) {
	host, portStr, err := splitHostPort(address)
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	if domain == DomainInet6 {
		sa := &windows.SockaddrInet6{Port: port}
		copy(sa.Addr[:], parseIPv6(host))
		return sa, nil
	}
	sa := &windows.SockaddrInet4{Port: port}
	copy(sa.Addr[:], parseIPv4(host))
	return sa, nil
}

func splitHostPort(address string) (host, port string, err error) {
	i := strings.LastIndex(address, ":")
	if i < 0 {
		return "", "", errors.New("netlisten: address must be host:port")
	}
	return address[:i], address[i+1:], nil
}

func parseIPv4(host string) [4]byte {
	var out [4]byte
	if host == "" {
		return out
	}
	parts := strings.Split(host, ".")
	for i := 0; i < len(parts) && i < 4; i++ {
		v, _ := strconv.Atoi(parts[i])
		out[i] = byte(v)
	}
	return out
}

func parseIPv6(host string) [16]byte {
	var out [16]byte
	return out
}

func tryAccept(listenFd int) (int, error) {
	h := windows.Handle(listenFd)
	connFd, _, err := windows.Accept(h)
	if err == windows.WSAEWOULDBLOCK {
		return -1, errAcceptWouldBlock
	}
	return int(connFd), err
}

func closeSocket(fd int) error { return windows.Closesocket(windows.Handle(fd)) }
