package main

import "github.com/saadjs/kcal-trends/cmd/trends"

func main() {
	trends.Execute()
}
