package core

import (
	"woofi/core/state"
	"woofi/core/types"
	"woofi/native/woofi"
)

func (n *Node) readEngine() *woofi.Engine {
	engine := woofi.NewEngine()
	engine.SetState(state.NewManager(n.trie))
	return engine
}

// GetAccount returns the committed native account of addr.
func (n *Node) GetAccount(addr [20]byte) (*types.Account, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return state.NewManager(n.trie).GetAccount(addr[:])
}

// Platform returns the committed platform singleton.
func (n *Node) Platform() (*woofi.Platform, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.readEngine().Platform()
}

// Dog returns the committed dog record at addr.
func (n *Node) Dog(addr [20]byte) (*woofi.Dog, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.readEngine().Dog(addr)
}

// Donation returns the committed donation record at addr.
func (n *Node) Donation(addr [20]byte) (*woofi.Donation, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.readEngine().Donation(addr)
}
