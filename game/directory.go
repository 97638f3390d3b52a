package game

import "sync"

// Directory maps live connection handles to the stable participant
// identity and room they are bound to. Game logic keys everything off the
// participant id; the connection handle is only a delivery address and is
// replaced in place on reconnect.
type Directory struct {
	mu     sync.RWMutex
	byConn map[Conn]binding
}

type binding struct {
	roomID string
	userID string
}

func NewDirectory() *Directory {
	return &Directory{byConn: make(map[Conn]binding)}
}

func (d *Directory) bind(c Conn, roomID, userID string) {
	d.mu.Lock()
	d.byConn[c] = binding{roomID: roomID, userID: userID}
	d.mu.Unlock()
}

func (d *Directory) unbind(c Conn) {
	d.mu.Lock()
	delete(d.byConn, c)
	d.mu.Unlock()
}

func (d *Directory) lookup(c Conn) (binding, bool) {
	d.mu.RLock()
	b, ok := d.byConn[c]
	d.mu.RUnlock()
	return b, ok
}
