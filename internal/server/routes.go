package server

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/roach88/millwork/internal/engine"
	"github.com/roach88/millwork/internal/processor"
	"github.com/roach88/millwork/internal/stack"
	"github.com/roach88/millwork/internal/store"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"tick":    s.world.Tick(),
		"running": s.world.Running(),
	})
}

func (s *Server) handleList(c *fiber.Ctx) error {
	return c.JSON(s.world.Status())
}

func (s *Server) handleGet(c *fiber.Ctx) error {
	st, err := s.world.ProcessorStatus(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(st)
}

func (s *Server) handleSnapshot(c *fiber.Ctx) error {
	snap, err := s.world.Snapshot(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(snap)
}

func (s *Server) handleCompletions(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := s.world.ProcessorStatus(id); err != nil {
		return err
	}
	q := store.CompletionQuery{
		ProcessorID: id,
		Recipe:      c.Query("recipe"),
		Since:       int64(c.QueryInt("since", 0)),
		Until:       int64(c.QueryInt("until", 0)),
		Limit:       c.QueryInt("limit", 0),
	}
	if err := q.Validate(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	recs, err := s.world.QueryCompletions(c.UserContext(), q)
	if err != nil {
		return err
	}
	if recs == nil {
		recs = []store.CompletionRecord{}
	}
	return c.JSON(recs)
}

// CommandRequest is the body of POST /processors/:id/commands. Items and
// fluids use the "id[:meta]*count" and "id*amount" notation.
type CommandRequest struct {
	Op       string              `json:"op"`
	Side     string              `json:"side,omitempty"`
	Slot     int                 `json:"slot,omitempty"`
	Amount   int                 `json:"amount,omitempty"`
	Item     string              `json:"item,omitempty"`
	Fluid    string              `json:"fluid,omitempty"`
	Halted   bool                `json:"halted,omitempty"`
	Upgrades *processor.Upgrades `json:"upgrades,omitempty"`
}

// CommandResponse reports what a command moved.
type CommandResponse struct {
	Op    string `json:"op"`
	Tick  int64  `json:"tick"`
	Item  string `json:"item,omitempty"`
	Fluid string `json:"fluid,omitempty"`
	Moved int    `json:"moved"`
}

func (s *Server) handleCommand(c *fiber.Ctx) error {
	var req CommandRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid command body: "+err.Error())
	}
	cmd, err := req.command(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if _, err := s.world.ProcessorStatus(cmd.Processor); err != nil {
		return err
	}

	res, err := s.dispatch(c, cmd)
	if err != nil {
		return err
	}
	if res.Err != nil {
		return fiber.NewError(fiber.StatusBadRequest, res.Err.Error())
	}

	out := CommandResponse{Op: cmd.Op.String(), Tick: s.world.Tick(), Moved: res.Moved}
	if !res.Item.IsEmpty() {
		out.Item = res.Item.String()
	}
	if !res.Fluid.IsEmpty() {
		out.Fluid = res.Fluid.String()
	}
	return c.JSON(out)
}

// dispatch queues cmd for the next tick of a running world and waits for
// its reply. A stopped world applies it immediately.
func (s *Server) dispatch(c *fiber.Ctx, cmd engine.Command) (engine.CommandResult, error) {
	if !s.world.Running() {
		return s.world.Apply(cmd), nil
	}

	reply := make(chan engine.CommandResult, 1)
	cmd.Reply = reply
	if !s.world.Submit(cmd) {
		return engine.CommandResult{}, fiber.NewError(fiber.StatusServiceUnavailable, "world is shutting down")
	}

	timer := time.NewTimer(s.commandTimeout)
	defer timer.Stop()
	select {
	case res := <-reply:
		return res, nil
	case <-timer.C:
		return engine.CommandResult{}, fiber.NewError(fiber.StatusGatewayTimeout, "command not applied in time")
	case <-c.UserContext().Done():
		return engine.CommandResult{}, c.UserContext().Err()
	}
}

func (r CommandRequest) command(id string) (engine.Command, error) {
	op, err := engine.ParseOp(r.Op)
	if err != nil {
		return engine.Command{}, err
	}
	cmd := engine.Command{Op: op, Processor: id, Slot: r.Slot, Amount: r.Amount, Halted: r.Halted}

	if r.Side != "" {
		if cmd.Side, err = processor.ParseSide(r.Side); err != nil {
			return engine.Command{}, err
		}
	}
	if r.Item != "" {
		if cmd.Item, err = stack.ParseItem(r.Item); err != nil {
			return engine.Command{}, err
		}
	}
	if r.Fluid != "" {
		if cmd.Fluid, err = stack.ParseFluid(r.Fluid); err != nil {
			return engine.Command{}, err
		}
	}
	if r.Upgrades != nil {
		cmd.Upgrades = *r.Upgrades
	}

	switch op {
	case engine.OpInsertItem:
		if cmd.Item.IsEmpty() {
			return engine.Command{}, fmt.Errorf("%s needs an item", op)
		}
	case engine.OpFill, engine.OpFillTank:
		if cmd.Fluid.IsEmpty() {
			return engine.Command{}, fmt.Errorf("%s needs a fluid", op)
		}
	case engine.OpExtractItem, engine.OpDrain, engine.OpCharge:
		if cmd.Amount <= 0 {
			return engine.Command{}, fmt.Errorf("%s needs a positive amount, got %d", op, cmd.Amount)
		}
	}
	return cmd, nil
}
