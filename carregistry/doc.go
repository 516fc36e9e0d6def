// Package carregistry is a small police database built on the flyweight
// package. Each registered car keeps its plates and owner in a Record and
// points at the Flyweight shared by every car with the same brand, model and
// color.
//
//	cache, _ := flyweight.NewInterningCache(flyweight.DefaultConfig())
//	registry, _ := carregistry.New(cache, carregistry.WithLogger(logger))
//
//	record, err := registry.Register(ctx, carregistry.Car{
//		Plates: "CL234IR",
//		Owner:  "James Doe",
//		Brand:  "BMW",
//		Model:  "M5",
//		Color:  "red",
//	})
//	if err != nil {
//		return err
//	}
//	out, err := registry.Render(record)
package carregistry
