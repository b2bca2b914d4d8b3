package album

import "sync"

// Keys is an in-process KeyBus. The session publishes key presses that arrive
// from the client; only current subscribers see them.
type Keys struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Key)
}

func NewKeys() *Keys {
	return &Keys{subs: make(map[int]func(Key))}
}

func (k *Keys) Subscribe(fn func(Key)) func() {
	k.mu.Lock()
	defer k.mu.Unlock()
	id := k.next
	k.next++
	k.subs[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			k.mu.Lock()
			defer k.mu.Unlock()
			delete(k.subs, id)
		})
	}
}

// Publish delivers key to every subscriber.
func (k *Keys) Publish(key Key) {
	k.mu.Lock()
	fns := make([]func(Key), 0, len(k.subs))
	for _, fn := range k.subs {
		fns = append(fns, fn)
	}
	k.mu.Unlock()
	for _, fn := range fns {
		fn(key)
	}
}

// Len reports the number of live subscriptions.
func (k *Keys) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.subs)
}
