package methods

// RegisterAll registers every adapter this package provides under the
// name the experiment driver's configuration refers to it by. Called
// explicitly from the driver's entry point rather than from an init()
// func, per the source library's warning about lazy static registration
// (see pkg/methods.Registry's doc comment).
func RegisterAll(r *Registry[float32]) {
	r.Register("hnsw", func() Method[float32] { return NewHNSW(16, 200, 100) })
	r.Register("nsg", func() Method[float32] { return NewNSG(100) })
	r.Register("diskann", func() Method[float32] { return NewDiskANN(64, 100) })
	r.Register("ivf-flat", func() Method[float32] { return NewIVFFlat(16, 4) })
	r.Register("ivf-pq", func() Method[float32] { return NewIVFPQ(16, 4) })
	r.Register("scann", func() Method[float32] { return NewSCANN(16, 4) })
}
