//go:build unix

package netlisten

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

var errAcceptWouldBlock = errors.New("netlisten: accept would block")

func listenSocket(domain Domain, typ SockType, proto Proto, address string) (int, error) {
	family := unix.AF_INET
	if domain == DomainInet6 {
		family = unix.AF_INET6
	}
	sockType := unix.SOCK_STREAM
	if typ != TypeStream {
		return -1, errors.New("netlisten: unsupported socket type")
	}
	sockProto := 0
	if proto == ProtoTCP {
		sockProto = unix.IPPROTO_TCP
	}

	fd, err := unix.Socket(family, sockType|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, sockProto)
	if err != nil {
		return -1, err
	}
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)

	sa, err := toSockaddr(domain, address)
	if err != nil {
		unix.Close(fd)
		return -1, err
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return -1, err
	}
	if err := unix.Listen(fd, 128); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

func toSockaddr(domain Domain, address string) (unix.Sockaddr, error) {
	host, portStr, err := splitHostPort(address)
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	if domain == DomainInet6 {
		sa := &unix.SockaddrInet6{Port: port}
		copy(sa.Addr[:], parseIPv6(host))
		return sa, nil
	}
	sa := &unix.SockaddrInet4{Port: port}
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
	if host == "" || host == "::" {
		return out
	}
	return out
}

func tryAccept(listenFd int) (int, error) {
	connFd, _, err := unix.Accept4(listenFd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err == unix.EAGAIN {
		return -1, errAcceptWouldBlock
	}
	return connFd, err
}

func closeSocket(fd int) error { return unix.Close(fd) }
