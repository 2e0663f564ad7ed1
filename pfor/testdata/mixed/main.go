package main

import "fmt"

const N = 4

func main() {
	var grid [N * 3]int
	//amdahl:parallel
	for i := 0; i < N; i++ {
		//amdahl:collapse
		for j := 0; j < 3; j++ {
			grid[0]++
		}
	}
	fmt.Println(grid)
	scale(2)
}
