package fastid

import (
	"testing"
)

func BenchmarkGenerate(b *testing.B) {
	worker := New(1)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = worker.Generate()
	}
}

func BenchmarkGenerate_Parallel(b *testing.B) {
	worker := New(1)
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = worker.Generate()
		}
	})
}

func BenchmarkGenerateUUID(b *testing.B) {
	worker := New(1)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = worker.GenerateUUID()
	}
}

func BenchmarkID_String(b *testing.B) {
	id := New(1).Generate()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = id.String()
	}
}

func BenchmarkID_Base62(b *testing.B) {
	id := New(1).Generate()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = id.Base62()
	}
}

func BenchmarkParseBase62(b *testing.B) {
	s := New(1).Generate().Base62()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, err := ParseBase62(s)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkID_Base64(b *testing.B) {
	id := New(1).Generate()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = id.Base64()
	}
}

func BenchmarkParseBase64(b *testing.B) {
	s := New(1).Generate().Base64()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, err := ParseBase64(s)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkUUID_String(b *testing.B) {
	u := New(1).GenerateUUID()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = u.String()
	}
}
