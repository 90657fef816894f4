// Command resolver lints, resolves and serves the services defined in a
// definitions file, backed by a small set of demo modules.
//
//	resolver lint -c cmd/resolver/services.yaml
//	resolver get greeter -c cmd/resolver/services.yaml
//	resolver serve --addr :8000
package main

import (
	"os"

	"github.com/km-arc/go-resolver/framework/console"
	"github.com/km-arc/go-resolver/framework/modules"
)

func main() {
	os.Exit(console.Execute(console.Options{
		Name:      "resolver",
		Providers: []modules.ServiceProvider{&DemoProvider{}},
	}))
}
