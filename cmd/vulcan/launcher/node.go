package launcher

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/evalphobia/logrus_sentry"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-vulcan/api"
	"github.com/rony4d/go-vulcan/metrics"
	"github.com/rony4d/go-vulcan/protocol"
)

// logLevel maps the numeric verbosity onto a logrus level.
func logLevel(verbosity int) (logrus.Level, error) {
	if verbosity < int(logrus.PanicLevel) || verbosity > int(logrus.TraceLevel) {
		return 0, fmt.Errorf("log verbosity %d out of range [0, %d]", verbosity, logrus.TraceLevel)
	}
	return logrus.Level(verbosity), nil
}

// makeLogger builds the process logger. When dsn is set, error, fatal and
// panic entries are also sent to Sentry.
func makeLogger(cfg LoggingConfig, dsn string, out io.Writer) (*logrus.Logger, error) {
	level, err := logLevel(cfg.Verbosity)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)
	switch cfg.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{
			ForceColors:   cfg.Color,
			DisableColors: !cfg.Color,
			FullTimestamp: true,
		})
	default:
		return nil, fmt.Errorf("unknown log format %q (valid: text, json)", cfg.Format)
	}

	if dsn != "" {
		hook, err := logrus_sentry.NewSentryHook(dsn, []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
		})
		if err != nil {
			return nil, fmt.Errorf("sentry hook: %w", err)
		}
		hook.Timeout = 5 * time.Second
		hook.StacktraceConfiguration.Enable = true
		log.AddHook(hook)
	}
	return log, nil
}

// Node runs a ledger: the block driver, the JSON-RPC endpoint and the
// metrics endpoint.
type Node struct {
	cfg     Config
	backend *api.Backend
	rpc     *rpc.Server
	log     logrus.FieldLogger

	httpSrv    *http.Server
	httpAddr   string
	metricsSrv *http.Server

	quit chan struct{}
	wg   sync.WaitGroup
}

// NewNode builds the ledger described by cfg.
func NewNode(cfg Config, log logrus.FieldLogger) (*Node, error) {
	p, err := protocol.New(cfg.Rules(), cfg.Genesis,
		protocol.WithLogger(log),
		protocol.WithHistorySize(cfg.Ledger.HistorySize),
	)
	if err != nil {
		return nil, err
	}
	backend := api.NewBackend(p, log)
	srv := rpc.NewServer()
	if err := api.Register(srv, backend); err != nil {
		return nil, err
	}
	return &Node{
		cfg:     cfg,
		backend: backend,
		rpc:     srv,
		log:     log.WithField("module", "node"),
		quit:    make(chan struct{}),
	}, nil
}

// Backend returns the serialized ledger.
func (n *Node) Backend() *api.Backend { return n.backend }

// HTTPEndpoint returns the URL of the running HTTP-RPC server, or "".
func (n *Node) HTTPEndpoint() string {
	if n.httpAddr == "" {
		return ""
	}
	return "http://" + n.httpAddr
}

// Start launches the endpoints and the block driver.
func (n *Node) Start() error {
	if n.cfg.Node.RPC.HTTPEnabled {
		addr := net.JoinHostPort(n.cfg.Node.RPC.HTTPAddr, strconv.Itoa(n.cfg.Node.RPC.HTTPPort))
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("http-rpc listen %s: %w", addr, err)
		}
		n.httpSrv = &http.Server{
			Handler:      n.rpc,
			ReadTimeout:  n.cfg.Node.RPC.Timeout,
			WriteTimeout: n.cfg.Node.RPC.Timeout,
		}
		go func() {
			if err := n.httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
				n.log.WithError(err).Error("HTTP-RPC server stopped")
			}
		}()
		n.httpAddr = listener.Addr().String()
		n.log.WithField("url", n.HTTPEndpoint()).Info("HTTP-RPC server started")
	}
	if n.cfg.Node.Metrics.Enabled {
		addr := net.JoinHostPort(n.cfg.Node.Metrics.HTTPAddr, strconv.Itoa(n.cfg.Node.Metrics.HTTPPort))
		n.metricsSrv = metrics.StartCollectingMetrics(addr, n.cfg.Node.RPC.Timeout, n.log)
		n.log.WithField("addr", addr).Info("Metrics server started")
	}

	n.wg.Add(1)
	go n.drive(n.cfg.Ledger.BlockInterval)
	return nil
}

// drive advances the ledger by one block per tick until Stop.
func (n *Node) drive(interval time.Duration) {
	defer n.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			record, err := n.backend.AdvanceBlock()
			if err != nil {
				n.log.WithError(err).Error("Failed to advance block")
				continue
			}
			if record != nil {
				n.log.WithFields(logrus.Fields{
					"epoch":   record.Epoch,
					"block":   record.Block,
					"supply":  record.TotalSupply,
					"firepit": record.FirePitBalance,
					"rebase":  record.RebaseActive,
				}).Info("Epoch")
			}
		case <-n.quit:
			return
		}
	}
}

// Stop terminates the driver and the endpoints.
func (n *Node) Stop() {
	close(n.quit)
	n.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, srv := range []*http.Server{n.httpSrv, n.metricsSrv} {
		if srv != nil {
			if err := srv.Shutdown(ctx); err != nil {
				n.log.WithError(err).Warn("Server shutdown")
			}
		}
	}
	n.rpc.Stop()
	n.log.WithField("block", n.backend.Status().Block).Info("Node stopped")
}
