package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/librescoot/keypad-backlight-service/pkg/backlight"
	"github.com/librescoot/keypad-backlight-service/pkg/config"
	"github.com/librescoot/keypad-backlight-service/pkg/events"
	"github.com/librescoot/keypad-backlight-service/pkg/hardware"
	"github.com/librescoot/keypad-backlight-service/pkg/redis"
)

// Configuration flags
var (
	redisAddr  = flag.String("redis-addr", "localhost:6379", "Redis server address")
	redisPass  = flag.String("redis-pass", "", "Redis password")
	redisDB    = flag.Int("redis-db", 0, "Redis database number")
	configPath = flag.String("config", "/etc/keypad-backlight/keypad.toml", "Path to the settings file")
	product    = flag.String("product", "", "Product identifier override (default: detect from device tree)")
	sysfsRoot  = flag.String("sysfs-root", hardware.DefaultSysfsRoot, "Root of the LED class sysfs tree")
)

func main() {
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Printf("Starting keypad backlight service")
	log.Printf("Redis address: %s", *redisAddr)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("Warning: %v, using defaults", err)
	}
	log.Printf("Settings: timeout=%ds fade-in=%dms fade-out=%dms level=%d",
		cfg.BacklightTimeout, cfg.FadeInTime, cfg.FadeOutTime, cfg.BacklightLevel)

	productID := *product
	if productID == "" {
		productID = hardware.DetectProduct()
	}
	profile := hardware.NewProfile(productID, *sysfsRoot)
	log.Printf("Keypad backlight hardware: %s (product %q)", profile.Variant, productID)

	redisClient, err := redis.New(*redisAddr, *redisPass, *redisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Printf("Connected to Redis")

	bus := events.New()
	svc := backlight.New(redisClient, bus, cfg)

	writer := hardware.NewWriter(profile, cfg.FadeInTime, cfg.FadeOutTime, svc.TimeoutPending)
	defer writer.Close()
	svc.SetWriter(writer)

	if err := redisClient.WriteString(backlight.KeyBacklight, "hardware", profile.Variant.String()); err != nil {
		log.Printf("Warning: failed to publish hardware variant: %v", err)
	}

	svc.Start()
	log.Printf("Subscribed to Redis channels")

	watcher := config.NewWatcher(*configPath, svc.ReloadConfig)
	if err := watcher.Start(); err != nil {
		log.Printf("Warning: not watching settings file: %v", err)
	} else {
		defer watcher.Stop()
	}

	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Printf("Warning: systemd notify failed: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	log.Printf("Shutting down...")
	if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		log.Printf("Warning: systemd notify failed: %v", err)
	}
	svc.Stop()
}
