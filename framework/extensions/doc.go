// Package extensions holds the standard extensions of the service container.
//
// # Definitions
//
//	services:
//	  mailer:
//	    module: mail.smtp              # RegistryModuleLoader
//	    args:
//	      - env:MAIL_HOST:localhost    # EnvArgResolver
//	      - "@logger"                  # ServiceArgResolver
//	      - "@config.Mail.From"        # ServiceArgResolver, with a path
//	      - defer:@queue               # DeferredArgResolver
//	      - noop                       # CommonArgResolver
//	    extras: [closer, "tag:notifiers"]
//	  templates:
//	    module: mail.templates
//	    init: value                    # ValueInitialiser
//
// Definitions without an init are built by the FactoryInitialiser, which calls
// the module as a constructor.
//
// # Wiring
//
//	reg := modules.NewRegistry()
//	closer := extensions.NewCloserHandler()
//	c, err := container.New(cfg, append(extensions.Defaults(reg), closer))
//	defer closer.Close()
package extensions
