// Package demoscene defines the contract between a gallery of procedural
// animation effects ("demos") and the lifecycle runner that hosts them.
//
// A demo is a self-contained rendering unit implementing the [Demo]
// interface. Each demo declares which back-end it draws with, either the
// immediate-mode raster surface or the persistent GPU compute pipeline,
// via the surface.Kind carried in its [Meta]. The runner package hosts one
// demo at a time on a shared surface, the surface package brokers the two
// back-ends behind a single handle, and the catalog package indexes demos
// by era and identifier.
//
// Typical host wiring:
//
//	cat, err := catalog.New(effects.All())
//	broker := surface.NewBroker(800, 600,
//	    surface.WithDeviceOpener(surface.OpenDefaultDevice))
//	run := runner.New(broker, runner.NewTickerScheduler(0))
//
//	demo, _ := cat.Lookup("plasma")
//	if err := run.Activate(context.Background(), demo); err != nil {
//	    // surface.UnsupportedBackendError: pick another demo
//	}
//
// By default the package produces no log output; call [SetLogger] to
// enable structured logging across all sub-packages.
package demoscene
