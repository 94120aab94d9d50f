//go:build windows

package ioresource

import "golang.org/x/sys/windows"

// setNonblock is a no-op on Windows: overlapped handles are always
// "non-blocking" in the sense §4.6 means (the call returns immediately
// with ERROR_IO_PENDING rather than a POSIX EAGAIN).
func setNonblock(fd int) error { return nil }

func closeFD(fd int) error { return windows.CloseHandle(windows.Handle(fd)) }

func openFileRead(path string) (int, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	h, err := windows.CreateFile(p, windows.GENERIC_READ, windows.FILE_SHARE_READ, nil,
		windows.OPEN_EXISTING, windows.FILE_FLAG_OVERLAPPED, 0)
	return int(h), err
}

func openFileWrite(path string) (int, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	h, err := windows.CreateFile(p, windows.GENERIC_WRITE, 0, nil,
		windows.CREATE_ALWAYS, windows.FILE_FLAG_OVERLAPPED, 0)
	return int(h), err
}

func tryRead(fd int, buf []byte) (int, error) {
	var n uint32
	ov := &windows.Overlapped{}
	err := windows.ReadFile(windows.Handle(fd), buf, &n, ov)
	if err == windows.ERROR_IO_PENDING {
		return 0, errWouldBlock
	}
	return int(n), err
}

func tryWrite(fd int, buf []byte) (int, error) {
	var n uint32
	ov := &windows.Overlapped{}
	err := windows.WriteFile(windows.Handle(fd), buf, &n, ov)
	if err == windows.ERROR_IO_PENDING {
		return 0, errWouldBlock
	}
	return int(n), err
}
