package log

import "sync"

// A LogContextAdder adds fields to every log entry, for example the
// current emulated cycle.
type LogContextAdder interface {
	AddLogContext(entry *EntryZ)
}

var (
	ctxmu    sync.RWMutex
	contexts []LogContextAdder
)

func AddContext(ctx LogContextAdder) {
	ctxmu.Lock()
	defer ctxmu.Unlock()

	contexts = append(contexts, ctx)
}

func RemoveContext(ctx LogContextAdder) {
	ctxmu.Lock()
	defer ctxmu.Unlock()

	for idx, c := range contexts {
		if c == ctx {
			contexts = append(contexts[:idx], contexts[idx+1:]...)
			return
		}
	}
}

func addContexts(z *EntryZ) {
	ctxmu.RLock()
	defer ctxmu.RUnlock()

	for _, c := range contexts {
		c.AddLogContext(z)
	}
}
