package notifier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitline/internal/logger"
)

// Build assembles the dispatchers named in names ("tray", "amqp", "none").
// The returned close function releases broker connections. A broker that
// cannot be reached is logged and left out.
func Build(names []string, amqpURL, amqpQueue string) (Dispatcher, func() error, error) {
	var (
		multi   Multi
		closers []func() error
	)

	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "", "none":
		case "tray":
			multi = append(multi, NewTray())
		case "amqp":
			if amqpURL == "" {
				return nil, nil, errors.New("amqp notifier needs a broker URL")
			}
			a, err := DialAMQP(amqpURL, amqpQueue)
			if err != nil {
				logger.Warn("AMQP notifier disabled", "error", err)
				continue
			}
			multi = append(multi, a)
			closers = append(closers, a.Close)
		default:
			return nil, nil, fmt.Errorf("unknown notifier %q", name)
		}
	}

	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}

	switch len(multi) {
	case 0:
		return Noop{}, closeAll, nil
	case 1:
		return multi[0], closeAll, nil
	default:
		return multi, closeAll, nil
	}
}
