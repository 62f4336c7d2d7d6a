package smolnet

import "sync"

// inflight counts running tasks and lets callers wait for the count to drop.
type inflight struct {
	cnt int
	cd  *sync.Cond
	lk  sync.Mutex
}

func newInflight() *inflight {
	res := &inflight{}
	res.cd = sync.NewCond(&res.lk)
	return res
}

func (n *inflight) add(delta int) {
	n.lk.Lock()
	defer n.lk.Unlock()

	n.cnt += delta

	if delta < 0 {
		n.cd.Broadcast()
	}
}

func (n *inflight) done() {
	n.add(-1)
}

func (n *inflight) count() int {
	n.lk.Lock()
	defer n.lk.Unlock()
	return n.cnt
}

// wait blocks until there are at most max tasks running.
func (n *inflight) wait(max int) {
	n.lk.Lock()
	defer n.lk.Unlock()

	for n.cnt > max {
		n.cd.Wait()
	}
}
