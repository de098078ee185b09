package tcp

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// epoll wraps one epoll(7) instance in level of detail the event loop
// needs and nothing more: register, modify interest, wait, close. It is
// edge-triggered throughout (§4.3: "the loop is edge-triggered: a single
// readiness notification must be drained completely"), unlike the
// teacher's blocking bufio.Reader-per-goroutine model which needed no
// readiness notifications at all.
type epoll struct {
	fd     int
	events []unix.EpollEvent
}

func newEpoll(maxEvents int) (*epoll, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, errors.Wrap(err, "epoll: create")
	}
	return &epoll{fd: fd, events: make([]unix.EpollEvent, maxEvents)}, nil
}

// add registers fd for edge-triggered readability (and, if writable is
// true, writability too — used while resuming a partially-flushed
// write). key is folded into Fd so Wait can hand it straight back to the
// caller without a separate fd->client map lookup in the hot path.
func (e *epoll) add(fd int32, key int32, writable bool) error {
	ev := unix.EpollEvent{Events: interestMask(writable), Fd: key}
	if err := unix.EpollCtl(e.fd, unix.EPOLL_CTL_ADD, int(fd), &ev); err != nil {
		return errors.Wrap(err, "epoll: add")
	}
	return nil
}

// modify changes the registered interest for fd, e.g. adding EPOLLOUT
// once a write comes back short and dropping it again once the queued
// output has fully drained.
func (e *epoll) modify(fd int32, key int32, writable bool) error {
	ev := unix.EpollEvent{Events: interestMask(writable), Fd: key}
	if err := unix.EpollCtl(e.fd, unix.EPOLL_CTL_MOD, int(fd), &ev); err != nil {
		return errors.Wrap(err, "epoll: modify")
	}
	return nil
}

// remove deregisters fd. It is always called before the fd is closed:
// closing first would make EPOLL_CTL_DEL race a reused fd number.
func (e *epoll) remove(fd int32) error {
	if err := unix.EpollCtl(e.fd, unix.EPOLL_CTL_DEL, int(fd), nil); err != nil {
		return errors.Wrap(err, "epoll: remove")
	}
	return nil
}

func interestMask(writable bool) uint32 {
	mask := uint32(unix.EPOLLIN) | unix.EPOLLET
	if writable {
		mask |= unix.EPOLLOUT
	}
	return mask
}

// wait blocks (timeoutMS<0 means indefinitely) until at least one
// descriptor is ready or the call is interrupted, returning the ready
// slice of e.events re-sliced to the count actually filled. EINTR is
// swallowed and reported as zero events, matching the teacher's
// signal-tolerant accept loop in spirit.
func (e *epoll) wait(timeoutMS int) ([]unix.EpollEvent, error) {
	n, err := unix.EpollWait(e.fd, e.events, timeoutMS)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, errors.Wrap(err, "epoll: wait")
	}
	return e.events[:n], nil
}

func (e *epoll) Close() error {
	return unix.Close(e.fd)
}
