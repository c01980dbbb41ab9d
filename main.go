// rsars - an educational RSA key generator and bulk block cipher.
//
// This is the main package that initializes the command line interface.
// For more information about this project, see the README.
package main

import "rsars/cli"

func main() {
	cli.Execute()
}
