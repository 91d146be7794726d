// Command haml2erb converts HAML templates to ERB.
package main

import "github.com/go-haml/haml2erb/cmd/haml2erb/command"

func main() {
	command.Execute()
}
