package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func methodNames(methods []MethodInfo) []string {
	names := make([]string, 0, len(methods))
	for _, mi := range methods {
		names = append(names, mi.Method)
	}

	return names
}

func TestParseSourceStructure_XunitClass(t *testing.T) {
	source := `
using Xunit;

namespace Calculator.Tests
{
    public class MathTests
    {
        [Fact]
        public void Addition_Works()
        {
            Assert.Equal(4, 2 + 2);
        }

        [Theory]
        [InlineData(1)]
        [InlineData(2)]
        public void Doubling_Works(int value)
        {
            Assert.Equal(value * 2, value + value);
        }
    }
}
`

	methods := ParseSourceStructure(source)
	require.Len(t, methods, 2)

	require.Equal(t, "Addition_Works", methods[0].Method)
	require.Equal(t, "MathTests", methods[0].Class)
	require.Equal(t, "Calculator.Tests", methods[0].Namespace)
	require.Equal(t, "Calculator.Tests.MathTests.Addition_Works", methods[0].FullName())

	require.Equal(t, "Doubling_Works", methods[1].Method)
}

func TestParseSourceStructure_FileScopedNamespace(t *testing.T) {
	source := `
namespace Widgets.Tests;

public class WidgetTests
{
    [Test]
    public async Task Loads_Config()
    {
        await Widget.LoadAsync();
    }
}
`

	methods := ParseSourceStructure(source)
	require.Len(t, methods, 1)
	require.Equal(t, "Widgets.Tests", methods[0].Namespace)
	require.Equal(t, "WidgetTests", methods[0].Class)
	require.Equal(t, "Loads_Config", methods[0].Method)
}

func TestParseSourceStructure_NestedNamespacesAndClasses(t *testing.T) {
	source := `
namespace Outer
{
    namespace Inner
    {
        public class Fixture
        {
            public class Nested
            {
                public void DeepMethod() { }
            }

            public void ShallowMethod() { }
        }
    }
}
`

	methods := ParseSourceStructure(source)
	require.Len(t, methods, 2)

	require.Equal(t, "DeepMethod", methods[0].Method)
	require.Equal(t, "Nested", methods[0].Class)
	require.Equal(t, "Outer.Inner", methods[0].Namespace)

	require.Equal(t, "ShallowMethod", methods[1].Method)
	require.Equal(t, "Fixture", methods[1].Class)
}

func TestParseSourceStructure_AllMethodsCollected(t *testing.T) {
	// Helpers without attributes are indexed too: the listing decides what
	// is a test, source scanning only recovers qualification.
	source := `
namespace App
{
    public class Service
    {
        public void Handle() { }

        private static string format(int n)
        {
            return n.ToString();
        }

        internal int Compute() => 42;
    }
}
`

	methods := ParseSourceStructure(source)
	require.Equal(t, []string{"Handle", "format", "Compute"}, methodNames(methods))
}

func TestParseSourceStructure_ConstructorsAndControlFlowIgnored(t *testing.T) {
	source := `
namespace App
{
    public class Runner
    {
        private int count = Initial();

        public Runner()
        {
            if (count > 0)
            {
                count = 0;
            }
        }

        public void Run()
        {
            foreach (var x in Items())
            {
                while (x > 0)
                {
                }
            }
        }
    }
}
`

	methods := ParseSourceStructure(source)
	require.Equal(t, []string{"Run"}, methodNames(methods))
}

func TestParseSourceStructure_LiteralsAndCommentsIgnored(t *testing.T) {
	source := `
namespace App
{
    // public void CommentedOut() { }
    public class Parser
    {
        /* public void AlsoCommented() { } */
        public void Parse()
        {
            var brace = "{ not a scope }";
            var verbatim = @"multi ""quoted"" { text }";
            var ch = '{';
        }

        public void Second() { }
    }
}
`

	methods := ParseSourceStructure(source)
	require.Equal(t, []string{"Parse", "Second"}, methodNames(methods))
}

func TestParseSourceStructure_ExpressionBodiedAndGeneric(t *testing.T) {
	source := `
namespace App
{
    public class Mapper
    {
        public string Render() => "done";

        public T Identity<T>(T value)
        {
            return value;
        }
    }
}
`

	methods := ParseSourceStructure(source)
	require.Equal(t, []string{"Render", "Identity"}, methodNames(methods))
}

func TestParseSourceStructure_PropertiesNotRecorded(t *testing.T) {
	source := `
namespace App
{
    public class Model
    {
        public int Count { get; set; }

        public string Name
        {
            get { return name; }
            set { name = value; }
        }

        public void Touch() { }
    }
}
`

	methods := ParseSourceStructure(source)
	require.Equal(t, []string{"Touch"}, methodNames(methods))
}

func TestParseSourceStructure_MethodsOutsideClassesIgnored(t *testing.T) {
	source := `
namespace App
{
    public interface IService
    {
        void Ping();
    }
}
`

	methods := ParseSourceStructure(source)
	require.Empty(t, methods)
}
