// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/clonescan/clonescan/cmd/clonescan"

func main() {
	cmd.Execute()
}
