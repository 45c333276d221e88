package engine

import (
	"fmt"
	"sync"

	"github.com/roach88/millwork/internal/processor"
	"github.com/roach88/millwork/internal/stack"
)

// Op names a command applied to one processor.
type Op int

const (
	// OpSetItem replaces a slot's contents.
	OpSetItem Op = iota + 1
	// OpInsertItem offers an item through a face, as a neighbour would.
	OpInsertItem
	// OpExtractItem takes up to Amount items from a slot through a face.
	OpExtractItem
	// OpFill offers a fluid through a face.
	OpFill
	// OpFillTank fills one tank directly.
	OpFillTank
	// OpDrain drains up to Amount through a face.
	OpDrain
	// OpHalt sets or clears the halted flag.
	OpHalt
	// OpSetUpgrades installs speed and energy upgrades.
	OpSetUpgrades
	// OpClear empties every slot, tank and staging buffer.
	OpClear
	// OpCharge offers Amount energy to the processor's storage.
	OpCharge
)

var opNames = map[Op]string{
	OpSetItem:     "set_item",
	OpInsertItem:  "insert_item",
	OpExtractItem: "extract_item",
	OpFill:        "fill",
	OpFillTank:    "fill_tank",
	OpDrain:       "drain",
	OpHalt:        "halt",
	OpSetUpgrades: "set_upgrades",
	OpClear:       "clear",
	OpCharge:      "charge",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "unknown"
}

// ParseOp returns the op with the given name.
func ParseOp(name string) (Op, error) {
	for op, n := range opNames {
		if n == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown command op %q", name)
}

// Command is one queued mutation. Fields not used by Op are ignored.
type Command struct {
	Op        Op
	Processor string
	Side      processor.Side
	Slot      int // slot or tank index
	Amount    int
	Item      stack.Item
	Fluid     stack.Fluid
	Halted    bool
	Upgrades  processor.Upgrades

	// Reply, if set, receives the outcome. It must be buffered; the world
	// never blocks on it.
	Reply chan<- CommandResult
}

// CommandResult reports what a command moved.
type CommandResult struct {
	Item  stack.Item  // remainder for inserts, extracted stack for extracts
	Fluid stack.Fluid // drained fluid
	Moved int         // amount filled or energy accepted
	Err   error
}

// commandQueue is a thread-safe FIFO queue of commands.
//
// Producers (HTTP handlers, the CLI) enqueue from any goroutine; the world
// drains the whole queue at the start of each tick.
type commandQueue struct {
	mu       sync.Mutex
	commands []Command
	closed   bool
}

func newCommandQueue() *commandQueue {
	return &commandQueue{commands: make([]Command, 0, 16)}
}

// Enqueue adds a command to the back of the queue.
// Returns false if the queue is closed.
func (q *commandQueue) Enqueue(c Command) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.commands = append(q.commands, c)
	return true
}

// TryDequeue removes the front command without blocking.
func (q *commandQueue) TryDequeue() (Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.commands) == 0 {
		return Command{}, false
	}

	c := q.commands[0]
	// Clear the slot so the Reply channel can be collected
	q.commands[0] = Command{}

	if len(q.commands) == 1 {
		q.commands = q.commands[:0]
	} else {
		q.commands = q.commands[1:]
	}
	return c, true
}

// Drain removes and returns every queued command in order.
func (q *commandQueue) Drain() []Command {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.commands) == 0 {
		return nil
	}
	out := q.commands
	q.commands = make([]Command, 0, cap(out))
	return out
}

// Len returns the current queue length.
func (q *commandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.commands)
}

// Close rejects further commands. Queued commands may still be drained.
func (q *commandQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
