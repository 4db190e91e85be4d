// Command bookmarks imports X/Twitter bookmarks into a memory store.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
