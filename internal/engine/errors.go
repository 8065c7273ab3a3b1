package engine

import "fmt"

func errUnitNotFound(unit string) error {
	return fmt.Errorf("engine: unit %q not found", unit)
}

func errCannotPerform(unit string) error {
	return fmt.Errorf("engine: unit %q cannot perform right now", unit)
}
