//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Opens the viewer on the document named by $DOCUMENT, testdata/sample.json by default.
func (Run) Viewer() error {
	mg.Deps(Build.Shaders)

	document := os.Getenv("DOCUMENT")
	if document == "" {
		document = "testdata/sample.json"
	}
	fmt.Printf("Run viewer on %s...\n", document)
	if _, err := executeCmd("go", withArgs("run", ".", document), withStream()); err != nil {
		return err
	}
	return nil
}
