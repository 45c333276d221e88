package processor

import "github.com/roach88/millwork/internal/stack"

// UpdateMessage is the state a display replica needs.
type UpdateMessage struct {
	IsProcessing    bool       `json:"isProcessing"`
	Time            float64    `json:"time"`
	BaseProcessTime float64    `json:"baseProcessTime"`
	Tanks           []TankInfo `json:"tanks"`
}

// UpdateMessage builds the sync message for this processor.
func (p *Processor) UpdateMessage() UpdateMessage {
	return UpdateMessage{
		IsProcessing:    p.isProcessing,
		Time:            p.currentTime,
		BaseProcessTime: p.baseProcessTime,
		Tanks:           p.Tanks(),
	}
}

// ApplyUpdate applies a sync message to a replica. It never matches
// recipes or touches inventories other than tank contents.
func (p *Processor) ApplyUpdate(m UpdateMessage) {
	p.isProcessing = m.IsProcessing
	p.currentTime = m.Time
	p.baseProcessTime = m.BaseProcessTime
	for i, info := range m.Tanks {
		if i >= len(p.tanks) {
			break
		}
		if info.ID == "" || info.Amount <= 0 {
			p.tanks[i].Clear()
			continue
		}
		p.tanks[i].SetFluid(stack.Fluid{ID: info.ID, Amount: info.Amount})
	}
}
