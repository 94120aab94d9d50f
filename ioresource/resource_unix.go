//go:build unix

package ioresource

import "golang.org/x/sys/unix"

func setNonblock(fd int) error { return unix.SetNonblock(fd, true) }

func closeFD(fd int) error { return unix.Close(fd) }

func openFileRead(path string) (int, error) {
	return unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC|unix.O_NONBLOCK, 0)
}

func openFileWrite(path string) (int, error) {
	return unix.Open(path, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC|unix.O_CLOEXEC|unix.O_NONBLOCK, 0o644)
}

func tryRead(fd int, buf []byte) (int, error) {
	n, err := unix.Read(fd, buf)
	if err == unix.EAGAIN {
		return 0, errWouldBlock
	}
	if n < 0 {
		n = 0
	}
	return n, err
}

func tryWrite(fd int, buf []byte) (int, error) {
	n, err := unix.Write(fd, buf)
	if err == unix.EAGAIN {
		return 0, errWouldBlock
	}
	if n < 0 {
		n = 0
	}
	return n, err
}
