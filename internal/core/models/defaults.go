package models

// Default returns the value a freshly attached component of variant T starts with.
func Default[T Component]() T {
	var v T
	switch p := any(&v).(type) {
	case *Transform:
		*p = NewTransform()
	case *Camera:
		*p = NewCamera()
	case *Light:
		p.Color = Vec3{1, 1, 1}
		p.Intensity = 1
	case *Collider:
		p.HalfWidth = Vec3{0.5, 0.5, 0.5}
	}
	return v
}

// KindOf returns the Kind of variant T.
func KindOf[T Component, P ComponentPtr[T]]() Kind {
	var v T
	return P(&v).Kind()
}
