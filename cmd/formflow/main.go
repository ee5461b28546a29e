package main

import (
	"errors"
	"flag"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-formflow/internal/server"
	"github.com/goliatone/go-formflow/internal/store/sqlite"
)

type config struct {
	Addr   string
	DBPath string
	Debug  bool
}

func parseFlags() config {
	var cfg config
	var host string
	flag.StringVar(&host, "host", "0.0.0.0", "listen host name")
	var port uint
	flag.UintVar(&port, "port", 8080, "listen port number")
	flag.StringVar(&cfg.DBPath, "db", "formflow.sqlite", "path to SQLite DB file")
	flag.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")
	flag.Parse()

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	return cfg
}

func main() {
	cfg := parseFlags()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer db.Close()

	srv := server.New(db, db, server.WithLogger(log))

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Router(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.WithField("addr", cfg.Addr).Info("listening")
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server stopped")
	}
}
