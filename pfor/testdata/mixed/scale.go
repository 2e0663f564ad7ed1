package main

func scale(k int) {
	var out [8]int
	//amdahl:parallel
	for i := 0; i != 8; i++ {
		out[i] = i * k
	}
	//amdahl:collapse
	for i := 0; i < 2; i++ {
		//amdahl:parallel
		for j := 0; j < 4; j++ {
			out[i*4+j] *= k
		}
	}
}
