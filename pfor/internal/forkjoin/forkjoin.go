// Package forkjoin describes the dispatch of resolved directive nests as MiGo
// programs.
//
// A parallel nest becomes a dispatcher which creates a join channel, spawns
// one worker per slice of the iteration space and waits for every worker:
//
//	def main.work#0():
//	    let join = newchan join, 0;
//	    spawn main.work#0.worker(join);
//	    spawn main.work#0.worker(join);
//	    recv join;
//	    recv join;
//	def main.work#0.worker(join):
//	    tau;
//	    send join;
//
// A nest without a parallel level runs in the calling goroutine and is a single
// function doing the region.
package forkjoin

import (
	"bytes"
	"fmt"

	"github.com/nickng/amdahl/nest"
	"github.com/nickng/amdahl/resolve"
	"github.com/nickng/migo"
)

// JoinChan is the name of the join channel of a dispatcher.
const JoinChan = "join"

// name is a MiGo variable.
type name string

func (n name) Name() string   { return string(n) }
func (n name) String() string { return string(n) }

// Model is a MiGo program of dispatched nests.
type Model struct {
	Prog    *migo.Program
	workers int

	*resolve.Logger
}

// New returns an empty model dispatching to at most workers goroutines.
func New(workers int, l *resolve.Logger) *Model {
	if workers < 1 {
		workers = 1
	}
	return &Model{Prog: migo.NewProgram(), workers: workers, Logger: l}
}

// Workers returns the number of workers spawned for res.
// Nests with a constant trip count never spawn idle workers.
func (m *Model) Workers(res *resolve.Resolved) int {
	if res.Dispatch.Kind() != nest.Parallel {
		return 0
	}
	n := int64(m.workers)
	if trip, ok := res.TripCount(); ok && trip < n {
		n = trip
	}
	return int(n)
}

// Add exports res under fn and returns the entry function.
func (m *Model) Add(fn string, res *resolve.Resolved) *migo.Function {
	entry := migo.NewFunction(fn)
	if res.Dispatch.Kind() != nest.Parallel {
		entry.AddStmts(&migo.TauStatement{})
		m.add(entry)
		m.debugf("%s sequential %s", fn, res.Dispatch)
		return entry
	}

	join := name(JoinChan)
	param := &migo.Parameter{Caller: join, Callee: join}

	workerName := fn + ".worker"
	worker := migo.NewFunction(workerName)
	worker.AddParams(param)
	worker.AddStmts(&migo.TauStatement{}, &migo.SendStatement{Chan: JoinChan})

	entry.AddStmts(&migo.NewChanStatement{Name: join, Chan: JoinChan, Size: 0})
	n := m.Workers(res)
	for i := 0; i < n; i++ {
		spawn := &migo.SpawnStatement{Name: workerName}
		spawn.AddParams(param)
		entry.AddStmts(spawn)
	}
	for i := 0; i < n; i++ {
		entry.AddStmts(&migo.RecvStatement{Chan: JoinChan})
	}
	m.add(entry)
	m.add(worker)
	m.debugf("%s dispatches %s to %d workers", fn, res.Dispatch, n)
	return entry
}

func (m *Model) add(fn *migo.Function) {
	m.Prog.Funcs = append(m.Prog.Funcs, fn)
}

func (m *Model) debugf(format string, args ...interface{}) {
	if m.Logger != nil {
		m.Debugf("%s "+format, append([]interface{}{m.Module()}, args...)...)
	}
}

func (m *Model) String() string {
	var buf bytes.Buffer
	for _, f := range m.Prog.Funcs {
		fmt.Fprint(&buf, f.String())
	}
	return buf.String()
}
