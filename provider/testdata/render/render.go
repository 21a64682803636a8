// Package render is a fixture that references types across packages.
package render

import "github.com/broady/bindgen/provider/testdata/scene"

type Camera struct {
	scene.Behavior

	Target *scene.Object
	Boxed  scene.Box[float64]
}
