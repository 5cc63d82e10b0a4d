// Command picodb inspects and maintains SQLite databases.
package main

import "github.com/syssam/picodb/internal/cli"

func main() {
	cli.Main()
}
