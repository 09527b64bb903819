package notification

import (
	"context"
	"log"
	"sync"
)

// Dispatcher fans a payload out to every configured channel and collects
// per-channel results. One channel failing never aborts the others, and a
// failed dispatch never fails the request that triggered it.
type Dispatcher struct {
	channels []Channel
}

func NewDispatcher(channels ...Channel) *Dispatcher {
	return &Dispatcher{channels: channels}
}

// Dispatch sends the payload to all channels concurrently and waits for every
// result. Results are returned in channel-registration order.
func (d *Dispatcher) Dispatch(ctx context.Context, payload Payload) []ChannelResult {
	results := make([]ChannelResult, len(d.channels))

	var wg sync.WaitGroup
	for i, ch := range d.channels {
		wg.Add(1)
		go func(i int, ch Channel) {
			defer wg.Done()
			result := ChannelResult{Channel: ch.Name(), Success: true}
			if err := ch.Send(ctx, payload); err != nil {
				result.Success = false
				result.Error = err.Error()
				log.Printf("notification channel %s failed: %v", ch.Name(), err)
			}
			results[i] = result
		}(i, ch)
	}
	wg.Wait()

	return results
}
