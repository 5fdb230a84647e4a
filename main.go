package main

import "ganeti-netbox-sync/cmd"

func main() {
	cmd.Execute()
}
