package backlight

import (
	"log"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/librescoot/keypad-backlight-service/pkg/config"
	"github.com/librescoot/keypad-backlight-service/pkg/events"
)

// Store is the slice of the Redis client the service depends on.
type Store interface {
	GetString(key, field string) (string, error)
	WriteAndPublishString(key, field, value string) error
	WriteAndPublishInt(key, field string, value int) error
	PublishBytes(channel string, payload []byte) error
	Subscribe(channel string) (<-chan *goredis.Message, func())
	BRPop(timeout time.Duration, key string) ([]string, error)
}

// BrightnessWriter is the hardware side of a brightness decision.
type BrightnessWriter interface {
	SetBrightness(brightness int)
	SetFadeTimes(fadeInTime, fadeOutTime int)
}

type eventKind int

const (
	eventNotify eventKind = iota
	eventTimerFired
	eventRequest
	eventConfig
)

// loopEvent is the one message type flowing into the service event loop.
type loopEvent struct {
	kind    eventKind
	channel string // eventNotify: pub/sub channel
	field   string // eventNotify: hash field that changed
	gen     uint64 // eventTimerFired
	reply   string // eventRequest: reply channel name
	cfg     config.Config
}

// Service is the keypad backlight policy engine. All state transitions,
// brightness decisions and hardware writes execute on a single event
// loop; notification listeners, the request watcher, the config watcher
// and timer fires only post events into that loop, so every handler runs
// to completion before the next event is taken and no shared state needs
// locking.
type Service struct {
	store  Store
	bus    *events.Bus
	writer BrightnessWriter
	cfg    config.Config

	loopCh   chan loopEvent
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	closers  []func()

	timer       *disableTimer
	enabled     bool
	brightness  int
	lastDisplay displayState
}

// New creates a new Service instance
func New(store Store, bus *events.Bus, cfg config.Config) *Service {
	s := &Service{
		store:  store,
		bus:    bus,
		cfg:    cfg,
		loopCh: make(chan loopEvent, 32),
		stopCh: make(chan struct{}),
	}
	s.timer = newDisableTimer(func(gen uint64) {
		s.post(loopEvent{kind: eventTimerFired, gen: gen})
	})
	return s
}

// SetWriter attaches the hardware writer. The writer becomes the first
// bus subscriber, so hardware writes complete before any later observer
// sees the decision.
func (s *Service) SetWriter(w BrightnessWriter) {
	s.writer = w
	s.bus.Subscribe(func(e events.BrightnessChangedEvent) {
		w.SetBrightness(e.Level)
	})
}

// TimeoutPending reports whether a disable timeout is currently armed.
// Only meaningful from within the event loop; the hardware writer calls
// it while handling a brightness broadcast, which runs on the loop.
func (s *Service) TimeoutPending() bool {
	return s.timer.Pending()
}

// Start publishes the initial state, subscribes to the notification
// channels and launches the event loop.
func (s *Service) Start() {
	// Late subscribers can read the current state from the hash.
	if err := s.store.WriteAndPublishInt(KeyBacklight, "brightness", 0); err != nil {
		log.Printf("Warning: failed to publish initial brightness: %v", err)
	}
	if err := s.store.WriteAndPublishString(KeyBacklight, "state", "off"); err != nil {
		log.Printf("Warning: failed to publish initial state: %v", err)
	}

	for _, channel := range []string{KeySystem, KeyKeyboard, KeyDisplay, KeyActivity} {
		ch, closeFn := s.store.Subscribe(channel)
		s.closers = append(s.closers, closeFn)

		s.wg.Add(1)
		go s.pump(channel, ch)
	}

	s.wg.Add(1)
	go s.watchStateRequests()

	s.wg.Add(1)
	go s.run()
}

// Stop shuts the service down: subscriptions are closed, the loop exits
// and any pending disable timeout is cancelled.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		for _, closeFn := range s.closers {
			closeFn()
		}
	})
	s.wg.Wait()
}

// ReloadConfig hands a freshly loaded config to the event loop.
func (s *Service) ReloadConfig(cfg config.Config) {
	s.post(loopEvent{kind: eventConfig, cfg: cfg})
}

// post delivers an event into the loop unless the service is stopping.
func (s *Service) post(ev loopEvent) {
	select {
	case s.loopCh <- ev:
	case <-s.stopCh:
	}
}

// pump forwards notifications from one pub/sub channel into the loop.
// The message payload is the hash field that changed; the handler reads
// the new value from the hash itself.
func (s *Service) pump(channel string, ch <-chan *goredis.Message) {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.post(loopEvent{kind: eventNotify, channel: channel, field: msg.Payload})
		}
	}
}

// run is the single event loop. Notifications are processed in delivery
// order and each handler, including the brightness broadcast and the
// hardware writes behind it, finishes before the next event is taken.
func (s *Service) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			s.timer.Cancel()
			return
		case ev := <-s.loopCh:
			s.handleEvent(ev)
		}
	}
}

func (s *Service) handleEvent(ev loopEvent) {
	switch ev.kind {
	case eventNotify:
		s.handleNotification(ev.channel, ev.field)
	case eventTimerFired:
		if s.timer.handleFire(ev.gen) {
			s.disable()
		}
	case eventRequest:
		s.sendStateReply(ev.reply)
	case eventConfig:
		s.applyConfig(ev.cfg)
	}
}

func (s *Service) handleNotification(channel, field string) {
	switch channel {
	case KeySystem:
		if field == "state" {
			s.handleSystemState()
		} else {
			log.Printf("Unhandled field '%s' for channel '%s'", field, channel)
		}
	case KeyKeyboard:
		if field == "slide" {
			s.handleKeyboardSlide()
		} else {
			log.Printf("Unhandled field '%s' for channel '%s'", field, channel)
		}
	case KeyDisplay:
		if field == "state" {
			s.handleDisplayState()
		} else {
			log.Printf("Unhandled field '%s' for channel '%s'", field, channel)
		}
	case KeyActivity:
		if field == "inactive" {
			s.handleActivity()
		} else {
			log.Printf("Unhandled field '%s' for channel '%s'", field, channel)
		}
	default:
		log.Printf("Unhandled channel in subscription: %s", channel)
	}
}

func (s *Service) applyConfig(cfg config.Config) {
	s.cfg = cfg
	if s.writer != nil {
		s.writer.SetFadeTimes(cfg.FadeInTime, cfg.FadeOutTime)
	}
	log.Printf("Applied config: timeout=%ds fade-in=%dms fade-out=%dms level=%d",
		cfg.BacklightTimeout, cfg.FadeInTime, cfg.FadeOutTime, cfg.BacklightLevel)
}
