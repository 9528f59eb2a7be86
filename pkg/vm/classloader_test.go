package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootLoaders(t *testing.T) {
	v := NewJavaVM()

	loaders := v.ClassLoaders()
	require.Len(t, loaders, 3)
	assert.Equal(t, LoaderBootstrap, v.BootstrapClassLoader().Kind)
	assert.Equal(t, LoaderApplication, v.ApplicationClassLoader().Kind)
	assert.Equal(t, LoaderAnonymous, v.AnonClassLoader().Kind)
	assert.NotSame(t, v.AnonClassLoader(), v.BootstrapClassLoader())
	assert.Same(t, v.BootstrapClassLoader(), v.ApplicationClassLoader().Parent)

	assert.Nil(t, v.AnonClassLoader().Table())
	assert.NotNil(t, v.BootstrapClassLoader().Table())

	user := v.NewClassLoader("plugin", v.ApplicationClassLoader())
	assert.Equal(t, LoaderUser, user.Kind)
	assert.Equal(t, 3, user.ID)
	assert.Equal(t, "plugin#3(user)", user.String())
}

func TestClassLoaderDelegation(t *testing.T) {
	v := NewJavaVM()
	boot := v.BootstrapClassLoader()
	app := v.ApplicationClassLoader()

	object, err := v.DefineClass(boot, "java/lang/Object", 0)
	require.NoError(t, err)
	hello, err := v.DefineClass(app, "Hello", 0)
	require.NoError(t, err)

	t.Run("delegates to parent first", func(t *testing.T) {
		assert.Same(t, object, app.LoadClass("java/lang/Object"))
	})

	t.Run("finds own class", func(t *testing.T) {
		assert.Same(t, hello, app.LoadClass("Hello"))
		assert.Nil(t, boot.LoadClass("Hello"))
	})

	t.Run("class not found", func(t *testing.T) {
		assert.Nil(t, app.LoadClass("com/nonexistent/Foo"))
		assert.Nil(t, v.AnonClassLoader().FindClass("Hello"))
	})
}
