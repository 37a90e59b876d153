package backlight

import (
	"log"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// stateReply is the query RPC answer: whether the backlight is lit.
type stateReply struct {
	Backlight bool `cbor:"backlight"`
}

// watchStateRequests polls the request list. Each element names the
// channel the caller expects its reply on; the request itself carries no
// other data.
func (s *Service) watchStateRequests() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		result, err := s.store.BRPop(time.Second, KeyStateRequests)
		if err != nil {
			log.Printf("Error receiving state request from list %s: %v", KeyStateRequests, err)
			time.Sleep(time.Second)
			continue
		}
		if result == nil {
			// Poll timeout, check for shutdown and go again.
			continue
		}

		s.post(loopEvent{kind: eventRequest, reply: result[1]})
	}
}

// sendStateReply answers one state query. Encoding or publish failures
// are reported but never alter the backlight state or take the service
// down.
func (s *Service) sendStateReply(replyChannel string) {
	log.Printf("Sending backlight state: %t", s.enabled)

	payload, err := cbor.Marshal(stateReply{Backlight: s.enabled})
	if err != nil {
		log.Printf("CRITICAL: failed to encode backlight state reply: %v", err)
		return
	}

	if err := s.store.PublishBytes(replyChannel, payload); err != nil {
		log.Printf("CRITICAL: failed to send backlight state reply to %s: %v", replyChannel, err)
	}
}
