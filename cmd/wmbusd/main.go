// Command wmbusd is a demo daemon wiring this module's decoding
// pipeline to a real serial-attached sub-GHz radio and an MQTT sink,
// the same shape as the teacher's cmd/agent-j1587/cmd/agent-j1939:
// open the transport, run an Assembler goroutine, decode each frame,
// publish, persist.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/tarm/serial"

	"github.com/vanturaiot/wmbus-core/internal/frame"
	"github.com/vanturaiot/wmbus-core/internal/logx"
	"github.com/vanturaiot/wmbus-core/internal/serialize"
	"github.com/vanturaiot/wmbus-core/internal/statestore"
	"github.com/vanturaiot/wmbus-core/internal/wmbus"
	"github.com/vanturaiot/wmbus-core/pkg/pipeline"
)

func main() {
	devicePath := pflag.String("device", "/dev/ttyUSB0", "serial device the wM-Bus dongle is attached to")
	baud := pflag.Int("baud", 9600, "serial baud rate")
	mqttBroker := pflag.String("mqtt-broker", "tcp://localhost:1883", "MQTT broker URL")
	mqttTopic := pflag.String("mqtt-topic", "wmbus/telegrams", "MQTT topic to publish decoded telegrams on")
	statePath := pflag.String("state", "wmbus-state.db", "path to the state store database")
	linkMode := pflag.String("link-mode", string(wmbus.LinkModeT1), "radio link mode")
	meterName := pflag.String("name", "meter", "configured name for the meter being decoded")
	pflag.Parse()

	log := logx.New()

	store, err := statestore.Open(*statePath)
	if err != nil {
		log.WithError(err).Fatal("open state store")
	}
	defer store.Close()

	pipe, err := pipeline.New(log)
	if err != nil {
		log.WithError(err).Fatal("build pipeline")
	}

	src, err := newSerialSource(*devicePath, *baud)
	if err != nil {
		log.WithError(err).Fatal("open radio")
	}

	mqttClient := mqtt.NewClient(mqtt.NewClientOptions().AddBroker(*mqttBroker).SetClientID("wmbusd"))
	if tok := mqttClient.Connect(); tok.Wait() && tok.Error() != nil {
		log.WithError(tok.Error()).Fatal("connect mqtt")
	}
	defer mqttClient.Disconnect(250)

	asm := frame.NewAssembler(src, wmbus.LinkMode(*linkMode), false, log)
	go asm.Run(time.Second)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case f := <-asm.Frames:
			handleFrame(pipe, store, mqttClient, *mqttTopic, *meterName, f, log)
		case <-sig:
			asm.Stop()
			return
		}
	}
}

func handleFrame(pipe *pipeline.Pipeline, store *statestore.Store, client mqtt.Client, topic, meterName string, f frame.Frame, log *logrus.Logger) {
	about := wmbus.AboutTelegram{
		RSSI:      f.RSSIDBm,
		LQI:       f.LQI,
		Timestamp: time.Now().Unix(),
		LinkMode:  f.LinkMode,
	}

	outcome, err := pipe.Decode(f.Bytes, about, wmbus.MeterKeys{})
	if err != nil {
		log.WithError(err).Debug("telegram discarded")
		return
	}
	if outcome.Telegram.Discard || outcome.Result == nil {
		return
	}

	addr := outcome.Telegram.LastAddress().ID
	doc, err := serialize.Telegram(outcome.Telegram, outcome.Result, serialize.Options{MeterName: outcome.Driver.Name, Name: meterName})
	if err != nil {
		log.WithError(err).Error("serialize telegram")
		return
	}

	if isNew, err := store.IsNewStatus(addr, outcome.Result.Status); err == nil && isNew {
		log.WithField("address", addr).WithField("status", outcome.Result.Status).Info("status changed")
	}
	if err := store.PutSnapshot(addr, doc); err != nil {
		log.WithError(err).Warn("persist snapshot")
	}

	if tok := client.Publish(topic, 0, false, doc); tok.Wait() && tok.Error() != nil {
		log.WithError(tok.Error()).Warn("publish mqtt")
	}
}

func newSerialSource(device string, baud int) (*serialSource, error) {
	cfg := &serial.Config{Name: device, Baud: baud, ReadTimeout: time.Second}
	port, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, err
	}
	return &serialSource{port: port}, nil
}

// serialSource adapts a tarm/serial port to internal/radio.Source. It
// reads whatever the dongle's own framing has already delimited into
// one []byte per PollFrame call; most USB wM-Bus dongles (e.g. the
// IMST iM871A in HCI mode) do their own frame delimiting over the
// wire, so this does no byte-level buffering of its own.
type serialSource struct {
	port *serial.Port
}

func (s *serialSource) PollFrame(deadline time.Time) (frameBytes []byte, rssiDBm int, lqi int, ok bool) {
	buf := make([]byte, 512)
	n, err := s.port.Read(buf)
	if err != nil || n == 0 {
		return nil, 0, 0, false
	}
	return buf[:n], 0, 0, true
}

func (s *serialSource) RestartRX() {}

func (s *serialSource) RSSI() int8 { return 0 }
