// Package bootstrap runs a drivegate process: it validates the typed config,
// initialises logging, starts the registered components in order, prints a
// startup summary, waits for SIGINT or SIGTERM and stops everything in
// reverse order within a graceful timeout.
//
//	app, err := bootstrap.NewApp(cfg)
//	app.RegisterComponent(server.NewComponent(srv))
//	app.OnReady(func(ctx context.Context) error {
//	    app.Logger.Info("accepting traffic")
//	    return nil
//	})
//	err = app.Run(ctx)
package bootstrap
