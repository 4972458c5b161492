package main

import "trackd/internal/trackctl"

func main() { trackctl.Main() }
