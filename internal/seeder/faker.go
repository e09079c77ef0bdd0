package seeder

import (
	"math/rand"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/shopspring/decimal"
)

// Faker supplies the synthetic scalar values used while seeding.
type Faker interface {
	Name() string
	Email() string
	Address() string
	Phone() string
	City() string
	Word() string
	IntRange(min, max int) int
	Price(min, max decimal.Decimal) decimal.Decimal
}

type DataGenerator struct {
	rand *rand.Rand
}

func NewDataGenerator() *DataGenerator {
	return NewDataGeneratorWithSeed(time.Now().UnixNano())
}

func NewDataGeneratorWithSeed(seed int64) *DataGenerator {
	return &DataGenerator{
		rand: rand.New(rand.NewSource(seed)),
	}
}

func (g *DataGenerator) Name() string {
	return faker.Name()
}

func (g *DataGenerator) Email() string {
	return faker.Email()
}

func (g *DataGenerator) Address() string {
	addr := faker.GetRealAddress()
	return addr.Address + ", " + addr.City + ", " + addr.State + " " + addr.PostalCode
}

func (g *DataGenerator) Phone() string {
	return faker.Phonenumber()
}

func (g *DataGenerator) City() string {
	return faker.GetRealAddress().City
}

func (g *DataGenerator) Word() string {
	return faker.Word()
}

// IntRange returns a value in [min, max].
func (g *DataGenerator) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + g.rand.Intn(max-min+1)
}

// Price returns a value in [min, max] with cent precision.
func (g *DataGenerator) Price(min, max decimal.Decimal) decimal.Decimal {
	lo := min.Shift(2).IntPart()
	hi := max.Shift(2).IntPart()
	if hi <= lo {
		return min.Round(2)
	}
	cents := lo + g.rand.Int63n(hi-lo+1)
	return decimal.New(cents, -2)
}
