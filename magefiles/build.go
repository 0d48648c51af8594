//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles the viewer into bin/epifaneia.
func (Build) Binary() error {
	mg.Deps(Build.Shaders)
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/epifaneia", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Compiles the built-in WGSL shaders to SPIR-V to catch errors before runtime.
func (Build) Shaders() error {
	if _, err := executeCmd("go", withArgs("test", "-run", "TestCompileBuiltins", "./engine/renderer/shaders/"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the whole test suite.
func Test() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
