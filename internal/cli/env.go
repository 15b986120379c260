package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shaiso/camunda-demo/internal/broker"
	"github.com/shaiso/camunda-demo/internal/config"
	"github.com/shaiso/camunda-demo/internal/demo"
	"github.com/shaiso/camunda-demo/internal/domain"
	"github.com/shaiso/camunda-demo/internal/mq"
	"github.com/shaiso/camunda-demo/internal/repo"
)

// Env — то, что нужно командам: конфигурация, клиент брокера, логгер.
// Создаётся после парсинга PersistentFlags через envFn.
type Env struct {
	Config config.Config
	Client *broker.Client
	Logger *slog.Logger
}

// NewEnv создаёт Env с клиентом брокера по конфигурации.
func NewEnv(cfg config.Config, logger *slog.Logger) *Env {
	bcfg := cfg.BrokerClientConfig()
	bcfg.Logger = logger

	return &Env{
		Config: cfg,
		Client: broker.NewClient(bcfg),
		Logger: logger,
	}
}

// Close освобождает клиент брокера.
func (e *Env) Close() error {
	return e.Client.Close()
}

// Coordinator создаёт demo.Coordinator с опциональными журналом и событиями.
// Возвращённую функцию нужно вызвать после завершения работы.
func (e *Env) Coordinator(ctx context.Context) (*demo.Coordinator, func()) {
	opts := demo.Options{Logger: e.Logger}
	var closers []func()

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if e.Config.DatabaseURL != "" {
		journal, closeJournal, err := e.OpenJournal(ctx)
		if err != nil {
			// Журнал опционален: без БД сценарий всё равно работает
			e.Logger.Warn("run journal disabled", "error", err)
		} else {
			opts.Journal = journal
			closers = append(closers, closeJournal)
		}
	}

	if e.Config.RabbitMQURL != "" {
		publisher, closeEvents, err := e.OpenEvents(ctx)
		if err != nil {
			e.Logger.Warn("event publishing disabled", "error", err)
		} else {
			opts.Events = publisher
			closers = append(closers, closeEvents)
		}
	}

	return demo.New(e.Client, e.Config.Demo, opts), cleanup
}

// OpenJournal подключается к PostgreSQL и создаёт таблицу журнала.
func (e *Env) OpenJournal(ctx context.Context) (*repo.RunRepo, func(), error) {
	pool, err := repo.NewPool(ctx, e.Config.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := repo.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return repo.NewRunRepo(pool), pool.Close, nil
}

// OpenEvents подключается к RabbitMQ и объявляет topology событий.
func (e *Env) OpenEvents(ctx context.Context) (*mq.Publisher, func(), error) {
	conn, err := e.openConnection(ctx)
	if err != nil {
		return nil, nil, err
	}

	closeConn := func() {
		if err := conn.Close(); err != nil {
			e.Logger.Warn("failed to close amqp connection", "error", err)
		}
	}
	return mq.NewPublisher(conn, e.Logger), closeConn, nil
}

func (e *Env) openConnection(ctx context.Context) (*mq.Connection, error) {
	url := e.Config.RabbitMQURL
	if url == "" {
		url = mq.DefaultURL
	}

	conn, err := mq.NewConnection(url, e.Logger)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	if err := mq.SetupTopology(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setup topology: %w", err)
	}
	return conn, nil
}

// parseVars разбирает KEY=VALUE. Значение — JSON, если разбирается
// (true, 42, {"a":1}), иначе строка.
func parseVars(pairs []string) (domain.Variables, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	vars := make(domain.Variables, len(pairs))
	for _, kv := range pairs {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid variable format %q, expected KEY=VALUE", kv)
		}

		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			vars[key] = decoded
		} else {
			vars[key] = value
		}
	}
	return vars, nil
}
