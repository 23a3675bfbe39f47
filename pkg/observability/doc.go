// Package observability provides structured logging, Prometheus metrics, health checks
// and graceful shutdown for the chat server.
//
// # Structured Logging
//
// Logger wraps logrus with a JSON formatter. Attached fields are nested under "fields":
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("chat_id", 7).WithError(err).Error("failed to list messages")
//
// Context-aware logging picks up request_id and user_id set by the middleware:
//
//	observability.FromContext(r.Context()).Info("message created")
//
// # Prometheus Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry, db)
//	router.Use(observability.HTTPMetricsMiddleware(metrics))
//	router.Handle("/metrics", observability.MetricsHandler(registry))
//
// The HTTP path label is the mux route template, so /api/chats/{id} is one series.
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(version,
//	    observability.DatabaseProbe(db),
//	    observability.DirectoryProbe("file_store", baseDir),
//	)
//	router.HandleFunc("/health/live", checker.Liveness)
//	router.HandleFunc("/health/ready", checker.Readiness)
//
// # Graceful Shutdown
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	sm := observability.NewShutdownManager(logger, server, 30*time.Second)
//	sm.RegisterShutdownFunc("database", func(context.Context) error { return db.Close() })
//	sm.WaitForShutdown(ctx)
package observability
