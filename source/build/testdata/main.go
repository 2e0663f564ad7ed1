package main

func main() {
	var sum [4]int
	//amdahl:parallel
	for i := 0; i < 4; i++ {
		sum[i] = foo(i) + bar(i)
	}
}
