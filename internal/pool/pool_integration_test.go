package pool

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/toyz/mockwire/internal/markers"
)

type cache interface{ Get(key string) string }

type lruCache struct{ memStore }

// PoolIntegrationTestSuite walks a pool through a fixture's lifetime
type PoolIntegrationTestSuite struct {
	suite.Suite
	builder *Builder
}

func (suite *PoolIntegrationTestSuite) SetupTest() {
	// Fresh builder per test
	suite.builder = NewBuilder()
}

func (suite *PoolIntegrationTestSuite) add(name, field string, kind markers.Kind, v interface{}) {
	suite.Require().NoError(suite.builder.Add(Substitute{
		Name:  name,
		Field: field,
		Kind:  kind,
		Value: reflect.ValueOf(v),
	}))
}

func (suite *PoolIntegrationTestSuite) TestFixtureWorkflow() {
	suite.add("", "primary", markers.Mock, &memStore{})
	suite.add("secondary", "other", markers.Spy, &diskStore{})
	suite.add("", "lru", markers.Mock, &lruCache{})

	p := suite.builder.Build()
	suite.Equal(3, p.Len())

	stores := p.ByType(reflect.TypeOf((*store)(nil)).Elem())
	suite.Len(stores, 3, "every substitute implements store")
	suite.Equal([]string{"primary", "secondary", "lru"}, []string{stores[0].Name, stores[1].Name, stores[2].Name})

	caches := p.ByType(reflect.TypeOf((*cache)(nil)).Elem())
	suite.Len(caches, 3)

	exact := p.ByType(reflect.TypeOf(&lruCache{}))
	suite.Require().Len(exact, 1)
	suite.Equal("lru", exact[0].Name)

	spy, ok := p.ByName("secondary")
	suite.Require().True(ok)
	suite.Equal(markers.Spy, spy.Kind)
	suite.Equal("other", spy.Field)
}

func (suite *PoolIntegrationTestSuite) TestIdentitiesAreDistinct() {
	suite.add("", "a", markers.Mock, &memStore{})
	suite.add("", "b", markers.Mock, &memStore{})

	all := suite.builder.Build().All()
	suite.Require().Len(all, 2)
	suite.NotEqual(all[0].ID, all[1].ID)
}

func (suite *PoolIntegrationTestSuite) TestLaterAddsDoNotLeakIntoBuiltPool() {
	suite.add("", "a", markers.Mock, &memStore{})
	first := suite.builder.Build()

	suite.add("", "b", markers.Mock, &diskStore{})
	suite.Equal(1, first.Len())
	_, ok := first.ByName("b")
	suite.False(ok)
	suite.Equal(2, suite.builder.Build().Len())
}

func TestPoolIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(PoolIntegrationTestSuite))
}
