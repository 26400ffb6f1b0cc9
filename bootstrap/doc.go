// Package bootstrap runs the application lifecycle: typed configuration,
// component registration, startup and shutdown hooks, and graceful
// shutdown on OS signals.
//
// # Quick Start
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	app.RegisterComponent(storageComponent)
//	app.OnReady(bot.Start)
//	app.OnStop(bot.Stop)
//	return app.Run(ctx)
package bootstrap
